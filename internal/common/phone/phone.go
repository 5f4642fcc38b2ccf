// internal/common/phone/phone.go
package phone

import "strings"

// Digits returns only the ASCII digits of raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize formats a number the same way for storage and for business lookup:
// 10 digits get "+1", anything else gets "+". No further validation is done.
func Normalize(raw string) string {
	d := Digits(raw)
	if len(d) == 10 {
		return "+1" + d
	}
	return "+" + d
}
