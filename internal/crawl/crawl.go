// Package crawl walks a project directory and returns the set of files
// eligible for ingestion, skipping build/dependency/vcs directories. It
// corresponds to C5 in the design.
package crawl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ignoredDirs = map[string]struct{}{
	"target":        {},
	"node_modules":  {},
	".git":          {},
	".venv":         {},
	".mypy_cache":   {},
	".pytest_cache": {},
	".ruff_cache":   {},
	"dist":          {},
	".next":         {},
	".vite":         {},
}

var supportedExtensions = map[string]struct{}{
	".rs":   {},
	".tsx":  {},
	".ts":   {},
	".jsx":  {},
	".js":   {},
	".md":   {},
	".toml": {},
	".json": {},
	".css":  {},
}

// Dir walks root and returns every eligible file's path, sorted, tolerating
// permission errors and symlink cycles by simply skipping what can't be read.
func Dir(root string) ([]string, error) {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // tolerate unreadable entries, keep crawling
		}
		if d.IsDir() {
			if path != root {
				if _, skip := ignoredDirs[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if isSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isSupportedFile(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
