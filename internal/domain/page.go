package domain

import "fmt"

// Source identifies the provenance of a fetched guide page.
type Source string

const (
	// SourceWikivoyage is the Wikivoyage travel guide.
	SourceWikivoyage Source = "wikivoyage"
	// SourceWikipedia is Wikipedia.
	SourceWikipedia Source = "wikipedia"
)

// ParseSource validates a source identifier string.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceWikivoyage, SourceWikipedia:
		return Source(s), nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// String returns the source identifier.
func (s Source) String() string { return string(s) }

// ParsedPage is one source document for one place. Sections map raw
// headings to raw section text; heading order is irrelevant.
type ParsedPage struct {
	Place    string
	Source   Source
	URL      string
	Sections map[string]string
}
