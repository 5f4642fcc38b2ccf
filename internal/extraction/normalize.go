// internal/extraction/normalize.go
package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize lowercases text and collapses whitespace runs into single spaces.
// It returns "" for blank input.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// firstMatch runs the rules in order over every match position and returns the first
// capture that accept keeps.
func firstMatch(rules []rule, text string, accept func(string) (string, bool)) (string, bool) {
	for _, r := range rules {
		for _, m := range r.regex.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if v, ok := accept(m[1]); ok {
				return v, true
			}
		}
	}
	return "", false
}

// cutAtWords truncates s before the first standalone occurrence of any of words.
func cutAtWords(s string, words ...string) string {
	padded := " " + s + " "
	cut := len(padded)
	for _, w := range words {
		if i := strings.Index(padded, " "+w+" "); i >= 0 && i < cut {
			cut = i
		}
	}
	if cut == len(padded) {
		return s
	}
	if cut == 0 {
		return ""
	}
	return strings.TrimSpace(padded[1:cut])
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
