package chunk

import (
	"fmt"
	"strings"

	"github.com/hermes-project/hermes/internal/store"
)

// chunkScript splits a TypeScript/JavaScript file into function-like
// chunks. A line starts a chunk when it begins with "function",
// "export function", "const", "export const", "export default function"
// or "export default class" and also contains "=>" or "("; a const or
// class declaration line with neither is not chunked.
func chunkScript(content string) []Chunk {
	lines := splitLines(content)
	var chunks []Chunk
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if !isScriptFunctionStart(line) {
			continue
		}
		name := extractScriptName(line)
		if name == "" {
			name = fmt.Sprintf("anonymous_%d", i)
		}
		end := findBlockEnd(lines, i)
		block := strings.Join(lines[i:end+1], "\n")
		chunks = append(chunks, Chunk{
			Name:      name,
			NodeType:  store.NodeTypeFunction,
			Content:   block,
			StartLine: i + 1,
			EndLine:   end + 1,
			Summary:   "function: " + name,
		})
	}
	return chunks
}

func isScriptFunctionStart(line string) bool {
	prefixed := strings.HasPrefix(line, "export function ") ||
		strings.HasPrefix(line, "function ") ||
		strings.HasPrefix(line, "export const ") ||
		strings.HasPrefix(line, "const ") ||
		strings.HasPrefix(line, "export default function ") ||
		strings.HasPrefix(line, "export default class ")
	if !prefixed {
		return false
	}
	return strings.Contains(line, "=>") || strings.Contains(line, "(")
}

func extractScriptName(line string) string {
	for _, keyword := range []string{"function ", "const ", "class "} {
		idx := strings.Index(line, keyword)
		if idx == -1 {
			continue
		}
		rest := line[idx+len(keyword):]
		rest = cutAt(rest, '(')
		rest = cutAt(rest, '=')
		rest = cutAt(rest, ':')
		rest = cutAt(rest, '<')
		rest = strings.TrimSpace(rest)
		if rest != "" {
			return rest
		}
	}
	return ""
}

func cutAt(s string, sep byte) string {
	if idx := strings.IndexByte(s, sep); idx != -1 {
		return s[:idx]
	}
	return s
}
