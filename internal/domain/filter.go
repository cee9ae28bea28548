package domain

import "github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"

// Filters narrows retrieval by metadata equality. Zero-valued fields are
// absent predicates, not wildcard matches on the empty string. Supplied
// predicates combine conjunctively.
type Filters struct {
	Place   string
	Section section.Section
}

// IsEmpty reports whether no predicate is set.
func (f Filters) IsEmpty() bool {
	return f.Place == "" && f.Section == ""
}

// Conditions returns the filter as metadata-equality pairs in a fixed order.
func (f Filters) Conditions() map[string]string {
	m := make(map[string]string, 2)
	if f.Place != "" {
		m["place"] = f.Place
	}
	if f.Section != "" {
		m["section"] = f.Section.String()
	}
	return m
}
