// internal/extraction/engine.go
package extraction

// Result is the information extracted from one transcript. Absent fields are nil.
type Result struct {
	Name           *string `json:"name"`
	CallbackNumber *string `json:"callback_number"`
	Address        *string `json:"address"`
	Reason         *string `json:"reason"`
	CallSummary    *string `json:"call_summary"`
	Confidence     float64 `json:"confidence"`
}

// Fields reports which of the scored fields are present, keyed by field name.
func (r Result) Fields() map[string]bool {
	return map[string]bool{
		"name":            r.Name != nil,
		"callback_number": r.CallbackNumber != nil,
		"address":         r.Address != nil,
		"reason":          r.Reason != nil,
	}
}

// Engine composes normalization, field extraction, summary and confidence.
// It holds no mutable state and may be used from any number of goroutines.
type Engine struct {
	patterns *Patterns
}

// NewEngine returns an Engine over p, or over DefaultPatterns when p is nil.
func NewEngine(p *Patterns) *Engine {
	if p == nil {
		p = DefaultPatterns()
	}
	return &Engine{patterns: p}
}

// Extract never fails: a blank transcript yields an all-nil result with zero
// confidence, and any other transcript at least gets a summary.
func (e *Engine) Extract(transcript string) Result {
	text := Normalize(transcript)
	if text == "" {
		return Result{}
	}

	var res Result
	res.Name = optional(ExtractName(text, e.patterns))
	res.CallbackNumber = optional(ExtractPhone(text, e.patterns))
	res.Address = optional(ExtractAddress(text, e.patterns))
	res.Reason = optional(ExtractReason(text, e.patterns))

	summary := BuildSummary(res.Reason)
	res.CallSummary = &summary
	res.Confidence = Confidence(res)
	return res
}

func optional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}
