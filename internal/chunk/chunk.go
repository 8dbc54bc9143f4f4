// Package chunk splits a file's content into named sub-units (functions,
// structs, markdown sections, ...) for independent indexing. Chunking is
// heuristic line/brace scanning, not AST parsing: it must never panic on
// malformed or truncated input, and it trades perfect structural accuracy
// for dependency-free, any-language robustness. It corresponds to C4 in
// the design.
package chunk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hermes-project/hermes/internal/store"
)

// Chunk is one named sub-unit of a file's content.
type Chunk struct {
	Name      string
	NodeType  store.NodeType
	Content   string
	StartLine int
	EndLine   int
	Summary   string
}

// File splits content (the text of the file at path) into chunks, choosing
// a strategy by the file's extension. Unrecognized extensions fall back to
// treating the whole file as a single chunk.
func File(path, content string) []Chunk {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rs":
		return chunkRust(content)
	case ".md", ".markdown":
		return chunkMarkdown(content)
	case ".ts", ".tsx", ".js", ".jsx":
		return chunkScript(content)
	default:
		return chunkWholeFile(path, content)
	}
}

func chunkWholeFile(path, content string) []Chunk {
	name := filepath.Base(path)
	return []Chunk{{
		Name:      name,
		NodeType:  store.NodeTypeFile,
		Content:   content,
		StartLine: 1,
		EndLine:   lineCount(content),
		Summary:   "File: " + name,
	}}
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// findBlockEnd scans forward from start counting '{'/'}' and returns the
// index of the line where the first opened brace closes. If no brace is
// opened before the end of input, it returns start+1, or the last line's
// index when start is already the last line.
func findBlockEnd(lines []string, start int) int {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
	}
	if start+1 < len(lines) {
		return start + 1
	}
	if len(lines) > 0 {
		return len(lines) - 1
	}
	return start
}

func buildSummary(typeStr, name, firstLine string) string {
	clean := strings.TrimSpace(firstLine)
	if len(clean) > 80 {
		return fmt.Sprintf("%s: %s", typeStr, name)
	}
	return fmt.Sprintf("%s: %s", typeStr, clean)
}
