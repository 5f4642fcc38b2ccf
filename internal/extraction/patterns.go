// internal/extraction/patterns.go
package extraction

import "regexp"

// rule is one ordered candidate strategy. The first capture group is the candidate value.
type rule struct {
	name  string
	regex *regexp.Regexp
}

// emergencyRoute maps a secondary keyword to a fixed reason.
type emergencyRoute struct {
	keywords *regexp.Regexp
	reason   string
}

// serviceTerm is an entry of the service vocabulary.
type serviceTerm struct {
	label string
	regex *regexp.Regexp
}

// modifier turns "<service>" into "<service> <suffix>".
type modifier struct {
	suffix string
	regex  *regexp.Regexp
}

// Patterns holds the ordered pattern tables for every field extractor. A Patterns value
// is never mutated after construction and is safe to share between goroutines.
type Patterns struct {
	nameConfirm   []rule
	nameIntro     []rule
	nameFallback  []rule
	nameStopwords map[string]struct{}
	nameBreaks    map[string]struct{}

	phoneIntents []rule

	addressIntents   []rule
	addressBareAt    []rule
	addressStreet    []rule
	addressStopwords map[string]struct{}

	emergency        *regexp.Regexp
	emergencyRoutes  []emergencyRoute
	emergencyDefault string
	reasonIntents    []rule
	services         []serviceTerm
	modifiers        []modifier
	reasonFallback   []rule
}

// character classes shared by the tables below
const (
	nameRun   = `([a-z][a-z ]*)`
	digitRun  = `(\+?1?[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}|\d{3}[\s.\-]?\d{4})\b`
	clauseRun = `([^.!?,;]+)`
	streetSfx = `(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd|court|ct|way|place|pl|circle|cir|parkway|pkwy|highway|hwy|terrace|trail)`
)

func mustRule(name, expr string) rule {
	return rule{name: name, regex: regexp.MustCompile(expr)}
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DefaultPatterns returns the built-in English pattern tables.
func DefaultPatterns() *Patterns {
	return &Patterns{
		nameConfirm: []rule{
			mustRule("confirm_information", `\binformation:\s*`+nameRun),
		},
		nameIntro: []rule{
			mustRule("my_name_is", `\bmy name is\s+`+nameRun),
			mustRule("i_am_contracted", `\bi'm\s+`+nameRun),
			mustRule("i_am", `\bi am\s+`+nameRun),
			mustRule("this_is", `\bthis is\s+`+nameRun),
			mustRule("call_me", `\bcall me\s+`+nameRun),
		},
		nameFallback: []rule{
			mustRule("name_generic", `\bname:?\s+(?:is\s+)?`+nameRun),
		},
		nameStopwords: wordSet(
			"a", "an", "the", "about", "calling", "looking", "interested", "having",
			"trying", "just", "not", "so", "very", "really", "here", "at", "in", "on",
			"with", "your", "my", "our", "emergency", "urgent", "wondering", "going",
			"sure", "ok", "okay", "good", "fine", "great", "sorry", "hoping", "reaching",
			"following", "regarding", "back", "is",
		),

		nameBreaks: wordSet("and", "but", "or", "i", "from", "calling", "with", "here"),

		phoneIntents: []rule{
			mustRule("number_is", `\b(?:phone|number|cell|callback)(?: number)? is:?\s*`+digitRun),
			mustRule("call_me_at", `\bcall me (?:back )?at\s*`+digitRun),
			mustRule("reach_me_at", `\breach me at\s*`+digitRun),
			mustRule("me_on", `\b(?:text|call) me on\s*`+digitRun),
			mustRule("at_number", `\bat\s+(\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4})\b`),
			mustRule("bare_number", `(\+?1?[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4})\b`),
		},

		addressIntents: []rule{
			mustRule("address_is", `\b(?:my |the |service |property )?address is:?\s+([^.!?]+)`),
			mustRule("i_live_at", `\bi live at\s+([^.!?]+)`),
			mustRule("located_at", `\b(?:i'm |we're |we are |i am )?located at\s+([^.!?]+)`),
			mustRule("property_at", `\b(?:property|house|home|building) is (?:at|on)\s+([^.!?]+)`),
			mustRule("come_out_to", `\bcome out to\s+([^.!?]+)`),
		},
		addressBareAt: []rule{
			mustRule("bare_at", `\bat\s+(\d+\s+[a-z][^.!?]*)`),
		},
		addressStreet: []rule{
			mustRule("street_suffix", `\b(\d+\s+(?:[a-z0-9]+\s+){0,4}`+streetSfx+`)\b`),
		},
		addressStopwords: wordSet("home", "work", "the office", "my house", "the house", "here", "there"),

		emergency: regexp.MustCompile(`\b(?:emergency|urgent|urgently|storm)\b`),
		emergencyRoutes: []emergencyRoute{
			{keywords: regexp.MustCompile(`\b(?:plumb\w*|water)`), reason: "Emergency plumbing service"},
			{keywords: regexp.MustCompile(`\b(?:trees?|branch\w*)`), reason: "Emergency tree removal"},
			{keywords: regexp.MustCompile(`\b(?:electric\w*|power)`), reason: "Emergency electrical service"},
		},
		emergencyDefault: "Emergency service request",

		reasonIntents: []rule{
			mustRule("calling_about", `\bcalling about\s+`+clauseRun),
			mustRule("need_help_with", `\bneed help with\s+`+clauseRun),
			mustRule("reason_for_calling", `\breason for (?:my )?call(?:ing)?(?: is)?:?\s+`+clauseRun),
			mustRule("i_need", `\bi need\s+`+clauseRun),
			mustRule("looking_for", `\blooking for\s+`+clauseRun),
			mustRule("want_to", `\bwant to\s+`+clauseRun),
			mustRule("because", `\bbecause\s+`+clauseRun),
			mustRule("since", `\bsince\s+`+clauseRun),
			mustRule("about", `\babout\s+`+clauseRun),
			mustRule("regarding", `\bregarding\s+`+clauseRun),
			mustRule("schedule", `\b((?:schedule|book)\s+[^.!?,;]+|appointment[^.!?,;]*)`),
		},
		services: []serviceTerm{
			{label: "plumbing", regex: regexp.MustCompile(`\bplumb(?:ing|er)\b`)},
			{label: "HVAC", regex: regexp.MustCompile(`\bhvac\b`)},
			{label: "electrical", regex: regexp.MustCompile(`\belectric(?:al|ian)\b`)},
			{label: "tree removal", regex: regexp.MustCompile(`\btree removal\b`)},
			{label: "landscaping", regex: regexp.MustCompile(`\blandscap(?:ing|er)\b`)},
			{label: "cleaning", regex: regexp.MustCompile(`\bcleaning\b`)},
			{label: "repair", regex: regexp.MustCompile(`\brepair\b`)},
			{label: "maintenance", regex: regexp.MustCompile(`\bmaintenance\b`)},
			{label: "installation", regex: regexp.MustCompile(`\binstallation\b`)},
			{label: "inspection", regex: regexp.MustCompile(`\binspection\b`)},
		},
		modifiers: []modifier{
			{suffix: "maintenance", regex: regexp.MustCompile(`\b(?:maintenance|routine)\b`)},
			{suffix: "repair", regex: regexp.MustCompile(`\b(?:repair|fix|fixed|fixing)\b`)},
			{suffix: "installation", regex: regexp.MustCompile(`\b(?:installation|install|installed)\b`)},
		},
		reasonFallback: []rule{
			mustRule("reason_or_need", `\b(?:reason|needs?)\b:?\s+(?:is\s+)?`+clauseRun),
		},
	}
}
