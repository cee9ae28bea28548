package section

import "strings"

// Section is a canonical travel-guide topic label.
type Section string

// Canonical section constants.
const (
	Safety     Section = "safety"
	Eat        Section = "eat"
	GetAround  Section = "get_around"
	Weather    Section = "weather"
	Understand Section = "understand"
	See        Section = "see"
	Do         Section = "do"
	Buy        Section = "buy"
	Sleep      Section = "sleep"
	Connect    Section = "connect"
	// Other is the fallback for headings matching no rule.
	Other Section = "other"
)

// rule maps a heading keyword to its canonical section.
type rule struct {
	keyword string
	section Section
}

// rules is the ordered normalization table. Matching is case-insensitive
// substring; the first matching rule wins, so order is a priority, not a set.
// "weather" and "climate" must precede the Eat rules: "weather" contains
// the substring "eat".
var rules = []rule{
	{"weather", Weather},
	{"climate", Weather},
	{"stay safe", Safety},
	{"safety", Safety},
	{"safe", Safety},
	{"crime", Safety},
	{"emergenc", Safety},
	{"get around", GetAround},
	{"getting around", GetAround},
	{"transport", GetAround},
	{"transit", GetAround},
	{"eat", Eat},
	{"food", Eat},
	{"dining", Eat},
	{"cuisine", Eat},
	{"restaurant", Eat},
	{"drink", Eat},
	{"understand", Understand},
	{"history", Understand},
	{"culture", Understand},
	{"sleep", Sleep},
	{"accommodation", Sleep},
	{"lodging", Sleep},
	{"hotel", Sleep},
	{"hostel", Sleep},
	{"buy", Buy},
	{"shop", Buy},
	{"see", See},
	{"sight", See},
	{"attraction", See},
	{"connect", Connect},
	{"internet", Connect},
	{"do", Do},
	{"activities", Do},
	{"event", Do},
}

// Normalize maps a raw source heading to its canonical section.
// Total and deterministic: every input has a defined output.
func Normalize(rawHeading string) Section {
	h := strings.ToLower(strings.TrimSpace(rawHeading))
	for _, r := range rules {
		if strings.Contains(h, r.keyword) {
			return r.section
		}
	}
	return Other
}

// targets are the sections retained for indexing. Everything else is
// parsed but discarded to keep the index focused on trip planning.
var targets = map[Section]struct{}{
	Safety:    {},
	Eat:       {},
	GetAround: {},
	Weather:   {},
}

// IsTarget reports whether a canonical section proceeds to chunking.
func IsTarget(s Section) bool {
	_, ok := targets[s]
	return ok
}

// Parse validates a canonical section identifier string (case-insensitive).
func Parse(s string) (Section, bool) {
	sec := Section(strings.ToLower(s))
	switch sec {
	case Safety, Eat, GetAround, Weather, Understand, See, Do, Buy, Sleep, Connect, Other:
		return sec, true
	}
	return "", false
}

// String returns the section identifier.
func (s Section) String() string { return string(s) }
