// Package utils holds path helpers shared by the command line tools.
package utils

import (
	"path/filepath"
	"strings"
)

// AbsPath resolves relPath against the working directory and cleans it.
func AbsPath(relPath string) (string, error) {
	fullPath, err := filepath.Abs(relPath)
	if err != nil {
		return "", err
	}
	return fullPath, nil
}

// DefaultOutputPath replaces the extension of inPath with ext, or appends
// ext if inPath has none.
func DefaultOutputPath(inPath, ext string) string {
	old := filepath.Ext(inPath)
	if old == "" {
		return inPath + ext
	}
	return strings.TrimSuffix(inPath, old) + ext
}
