// internal/extraction/reason.go
package extraction

import "strings"

const minReasonLen = 4

// ExtractReason finds why the caller called. An emergency keyword short-circuits
// everything else and yields one of a few fixed reasons.
func ExtractReason(text string, p *Patterns) (string, bool) {
	if text == "" {
		return "", false
	}

	if p.emergency.MatchString(text) {
		for _, route := range p.emergencyRoutes {
			if route.keywords.MatchString(text) {
				return route.reason, true
			}
		}
		return p.emergencyDefault, true
	}

	if v, ok := firstMatch(p.reasonIntents, text, acceptReason); ok {
		return v, true
	}
	if v, ok := p.serviceReason(text); ok {
		return v, true
	}
	return firstMatch(p.reasonFallback, text, acceptReason)
}

func acceptReason(raw string) (string, bool) {
	candidate := cutAtWords(strings.TrimSpace(raw), "and", "but", "so")
	if len(candidate) < minReasonLen {
		return "", false
	}
	return capitalizeFirst(candidate), true
}

// serviceReason matches the service vocabulary and qualifies it with the first modifier
// found anywhere in the text.
func (p *Patterns) serviceReason(text string) (string, bool) {
	for _, svc := range p.services {
		if !svc.regex.MatchString(text) {
			continue
		}
		suffix := "service"
		for _, m := range p.modifiers {
			if m.regex.MatchString(text) {
				suffix = m.suffix
				break
			}
		}
		if suffix == svc.label {
			suffix = "service"
		}
		return capitalizeFirst(svc.label + " " + suffix), true
	}
	return "", false
}
