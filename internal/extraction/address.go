// internal/extraction/address.go
package extraction

import "strings"

const minAddressLen = 6

// ExtractAddress finds a service address: explicit phrases first, then a bare
// "at <number> <street>", then anything ending in a street suffix.
func ExtractAddress(text string, p *Patterns) (string, bool) {
	if text == "" {
		return "", false
	}
	accept := func(raw string) (string, bool) { return p.acceptAddress(raw) }

	for _, rules := range [][]rule{p.addressIntents, p.addressBareAt, p.addressStreet} {
		if v, ok := firstMatch(rules, text, accept); ok {
			return v, true
		}
	}
	return "", false
}

func (p *Patterns) acceptAddress(raw string) (string, bool) {
	candidate := cutAtWords(strings.TrimSpace(raw), "and", "but", "so")
	candidate = strings.TrimRight(candidate, ", ")
	if len(candidate) < minAddressLen {
		return "", false
	}
	if _, stop := p.addressStopwords[candidate]; stop {
		return "", false
	}
	return capitalizeFirst(candidate), true
}
