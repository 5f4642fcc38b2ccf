// internal/extraction/summary.go
package extraction

import "strings"

const (
	// SummaryPlaceholder is used when no reason was found.
	SummaryPlaceholder = "Customer inquiry"
	maxSummaryWords    = 10
	summaryEllipsis    = "..."
)

// BuildSummary bounds a reason to the first ten words.
func BuildSummary(reason *string) string {
	if reason == nil {
		return SummaryPlaceholder
	}
	words := strings.Fields(*reason)
	if len(words) <= maxSummaryWords {
		return *reason
	}
	return strings.Join(words[:maxSummaryWords], " ") + summaryEllipsis
}

// Confidence scores 0.25 for each of name, callback number, address and reason.
func Confidence(info Result) float64 {
	score := 0.0
	for _, f := range []*string{info.Name, info.CallbackNumber, info.Address, info.Reason} {
		if f != nil {
			score += 0.25
		}
	}
	return score
}
