// internal/extraction/phone.go
package extraction

import "call-intake-workers/internal/common/phone"

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// ExtractPhone finds a callback number and returns it in canonical form.
func ExtractPhone(text string, p *Patterns) (string, bool) {
	if text == "" {
		return "", false
	}
	return firstMatch(p.phoneIntents, text, func(raw string) (string, bool) {
		d := phone.Digits(raw)
		if len(d) < minPhoneDigits || len(d) > maxPhoneDigits {
			return "", false
		}
		return phone.Normalize(d), true
	})
}
