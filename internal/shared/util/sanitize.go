package util

import (
	"errors"
	"strings"
	"unicode"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// DispositionName returns a filename safe to place inside a quoted
// Content-Disposition parameter.
func DispositionName(name string) string {
	clean, err := SanitizeFileName(name)
	if err != nil {
		return "download"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == ';':
			return '_'
		case r > unicode.MaxASCII:
			return '_'
		}
		return r
	}, clean)
}
