package ui

import (
	"path/filepath"
	"strings"
)

// ParseDroppedPaths splits the text a terminal pastes when files are dragged
// onto it. Paths may be wrapped in braces or quotes, or have their spaces
// escaped with a backslash, depending on the terminal and platform.
func ParseDroppedPaths(data string) []string {
	var (
		paths   []string
		token   strings.Builder
		closing rune
		escaped bool
	)

	flush := func() {
		if p := strings.TrimSpace(token.String()); p != "" {
			paths = append(paths, p)
		}
		token.Reset()
	}

	for _, ch := range data {
		switch {
		case escaped:
			token.WriteRune(ch)
			escaped = false
		case closing != 0:
			if ch == closing {
				closing = 0
				flush()
			} else {
				token.WriteRune(ch)
			}
		case ch == '{':
			flush()
			closing = '}'
		case ch == '"' || ch == '\'':
			flush()
			closing = ch
		case ch == '\\' && !isWindowsPathContext(token.String()):
			escaped = true
		case ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t':
			flush()
		default:
			token.WriteRune(ch)
		}
	}
	flush()

	for i, p := range paths {
		paths[i] = strings.TrimPrefix(p, "file://")
	}
	return paths
}

// isWindowsPathContext reports whether the token so far looks like a drive
// path, where backslashes separate directories instead of escaping.
func isWindowsPathContext(token string) bool {
	return len(token) >= 2 && token[1] == ':'
}

// firstDroppedWorkbook picks the first dropped path. ok is false when
// nothing usable was dropped.
func firstDroppedWorkbook(data string) (path string, ok bool) {
	paths := ParseDroppedPaths(data)
	if len(paths) == 0 {
		return "", false
	}
	return filepath.Clean(paths[0]), true
}
