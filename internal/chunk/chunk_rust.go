package chunk

import (
	"strings"

	"github.com/hermes-project/hermes/internal/store"
)

// chunkRust splits a .rs file into top-level fn/struct/enum/impl/trait
// chunks: scan lines for a fixed set of declaration prefixes, slice the
// identifier out between the keyword and the first '(', '{', or '<', then
// find the block end via brace-depth counting. A line counts as top-level
// when every brace opened before it has been closed, so methods inside an
// impl or trait block are not emitted as chunks of their own.
func chunkRust(content string) []Chunk {
	lines := splitLines(content)
	var chunks []Chunk
	depth := 0
	for i, raw := range lines {
		topLevel := depth == 0
		depth += strings.Count(raw, "{") - strings.Count(raw, "}")
		if depth < 0 {
			depth = 0
		}
		if !topLevel {
			continue
		}
		line := strings.TrimSpace(raw)
		name, nodeType, ok := parseRustDecl(line)
		if !ok {
			continue
		}
		end := findBlockEnd(lines, i)
		block := strings.Join(lines[i:end+1], "\n")
		chunks = append(chunks, Chunk{
			Name:      name,
			NodeType:  nodeType,
			Content:   block,
			StartLine: i + 1,
			EndLine:   end + 1,
			Summary:   buildSummary(string(nodeType), name, lines[i]),
		})
	}
	return chunks
}

var rustPrefixes = []struct {
	prefix   string
	nodeType store.NodeType
}{
	{"pub async fn ", store.NodeTypeFunction},
	{"async fn ", store.NodeTypeFunction},
	{"pub fn ", store.NodeTypeFunction},
	{"fn ", store.NodeTypeFunction},
	{"pub struct ", store.NodeTypeStruct},
	{"struct ", store.NodeTypeStruct},
	{"pub enum ", store.NodeTypeEnum},
	{"enum ", store.NodeTypeEnum},
	{"pub trait ", store.NodeTypeTrait},
	{"trait ", store.NodeTypeTrait},
	{"impl ", store.NodeTypeImpl},
}

func parseRustDecl(line string) (name string, nodeType store.NodeType, ok bool) {
	for _, p := range rustPrefixes {
		if strings.HasPrefix(line, p.prefix) {
			rest := strings.TrimPrefix(line, p.prefix)
			if p.nodeType == store.NodeTypeImpl {
				return extractImplName(rest), store.NodeTypeImpl, true
			}
			return extractRustIdent(rest), p.nodeType, true
		}
	}
	return "", "", false
}

// extractRustIdent slices the identifier between the keyword and the first
// '(', '{', or '<' (generic parameter list).
func extractRustIdent(rest string) string {
	end := len(rest)
	for _, sep := range []byte{'(', '{', '<'} {
		if idx := strings.IndexByte(rest, sep); idx != -1 && idx < end {
			end = idx
		}
	}
	return strings.TrimSpace(rest[:end])
}

// extractImplName uses the identifier after "for" if present ("impl Trait
// for Type"), else the identifier right after "impl".
func extractImplName(rest string) string {
	if idx := strings.Index(rest, " for "); idx != -1 {
		return extractRustIdent(rest[idx+len(" for "):])
	}
	return extractRustIdent(rest)
}
