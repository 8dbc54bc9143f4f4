package chunk

import (
	"strings"

	"github.com/hermes-project/hermes/internal/store"
)

// chunkMarkdown splits content on "#"/"##" headings, one chunk per section
// (a heading plus everything up to the next heading of the same or higher
// level scan — matched loosely, since the heuristic doesn't track depth).
func chunkMarkdown(content string) []Chunk {
	lines := splitLines(content)
	var chunks []Chunk
	sectionStart := -1
	var heading string

	flush := func(end int) {
		if sectionStart < 0 {
			return
		}
		section := strings.Join(lines[sectionStart:end], "\n")
		chunks = append(chunks, Chunk{
			Name:      heading,
			NodeType:  store.NodeTypeDocument,
			Content:   section,
			StartLine: sectionStart + 1,
			EndLine:   end,
			Summary:   heading,
		})
	}

	for i, line := range lines {
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "# ") {
			flush(i)
			sectionStart = i
			heading = strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	flush(len(lines))

	return chunks
}
