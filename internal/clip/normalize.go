package clip

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Normalize trims leading and trailing whitespace from captured text.
// Content is otherwise stored verbatim: case and inner whitespace are kept,
// so dedup stays an exact-text comparison.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeFolder trims a folder name. An empty result means "no folder given".
func NormalizeFolder(s string) string {
	return strings.TrimSpace(s)
}

// Preview returns the first line of content, cut to at most maxRunes runes.
// A trailing "…" marks truncation.
func Preview(content string, maxRunes int) string {
	line, _, multi := strings.Cut(content, "\n")
	line = strings.TrimRight(line, "\r")
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(line) <= maxRunes {
		if multi {
			return line + "…"
		}
		return line
	}
	runes := []rune(line)
	return string(runes[:maxRunes]) + "…"
}

// FolderMenu builds the folder choices shown to a user from the distinct
// folder values in the store. DefaultFolder always comes first; the rest are
// sorted and each appears once. Blank names are skipped.
func FolderMenu(distinct []string) []string {
	seen := map[string]bool{DefaultFolder: true}
	rest := make([]string, 0, len(distinct))
	for _, f := range distinct {
		if strings.TrimSpace(f) == "" || seen[f] {
			continue
		}
		seen[f] = true
		rest = append(rest, f)
	}
	sort.Strings(rest)
	return append([]string{DefaultFolder}, rest...)
}
