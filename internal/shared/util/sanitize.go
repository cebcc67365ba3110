package util

import (
	"errors"
	"strings"
)

var errUnsafeFileName = errors.New("unsafe file name")

// SanitizeFileName flattens path separators out of a client-supplied file
// name and rejects traversal attempts. Only a single path component should
// ever reach a storage key.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errUnsafeFileName
	}
	s := strings.TrimSpace(name)
	for _, sep := range []string{"/", "\\"} {
		s = strings.ReplaceAll(s, sep, "_")
	}
	if s == "" {
		return "", errUnsafeFileName
	}
	return s, nil
}
