package ingest

import (
	"strings"
	"time"
	"unicode/utf8"
)

// decodeLossy converts raw file bytes to a string, replacing invalid
// UTF-8 sequences so files in Latin-1, Windows-1252, GBK, etc. are still
// indexed rather than rejected.
func decodeLossy(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

func now() time.Time {
	return time.Now().UTC()
}
