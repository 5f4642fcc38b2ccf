// internal/extraction/name.go
package extraction

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExtractName finds the caller's name in normalized text. Strategies run in order:
// the "information:" confirmation clause, self-introductions, then "name <value>".
func ExtractName(text string, p *Patterns) (string, bool) {
	if text == "" {
		return "", false
	}
	accept := func(raw string) (string, bool) { return p.acceptName(raw) }

	for _, rules := range [][]rule{p.nameConfirm, p.nameIntro, p.nameFallback} {
		if v, ok := firstMatch(rules, text, accept); ok {
			return v, true
		}
	}
	return "", false
}

func (p *Patterns) acceptName(raw string) (string, bool) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return "", false
	}
	if _, stop := p.nameStopwords[words[0]]; stop {
		return "", false
	}

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, brk := p.nameBreaks[w]; brk {
			break
		}
		kept = append(kept, w)
	}

	candidate := strings.Join(kept, " ")
	if len(candidate) <= 2 {
		return "", false
	}
	if _, stop := p.nameStopwords[candidate]; stop {
		return "", false
	}
	// cases.Caser is stateful and must not be shared.
	return cases.Title(language.English).String(candidate), true
}
