// Package chunker splits normalized guide sections into bounded,
// overlapping text windows with boundary-aware splitting.
package chunker

import (
	"sort"
	"strings"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain/section"
)

// Default window sizes in characters.
const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
)

// maxLookback bounds the boundary-snapping search window.
const maxLookback = 200

// Chunker produces DocumentChunks from parsed pages.
// Requires overlap < size; config validation enforces this at startup.
type Chunker struct {
	size    int
	overlap int
	targets map[section.Section]bool
}

// New creates a chunker with the given window size and overlap.
// Non-positive values fall back to the defaults. When no target sections
// are given the canonical default set applies.
func New(size, overlap int, targets ...section.Section) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}
	c := &Chunker{size: size, overlap: overlap}
	if len(targets) > 0 {
		c.targets = make(map[section.Section]bool, len(targets))
		for _, t := range targets {
			c.targets[t] = true
		}
	}
	return c
}

func (c *Chunker) isTarget(s section.Section) bool {
	if c.targets == nil {
		return section.IsTarget(s)
	}
	return c.targets[s]
}

// ChunkPage normalizes the page's section headings and chunks every target
// section. Non-target sections are parsed but discarded. Chunks of one
// canonical section carry a contiguous 0-based ChunkIndex and the section's
// TotalChunks.
func (c *Chunker) ChunkPage(page domain.ParsedPage) []domain.DocumentChunk {
	var out []domain.DocumentChunk

	for _, sec := range sortedSections(page.Sections) {
		canonical := section.Normalize(sec.heading)
		if !c.isTarget(canonical) {
			continue
		}

		texts := c.split(sec.text)
		for i, text := range texts {
			out = append(out, domain.DocumentChunk{
				Text: text,
				Metadata: domain.ChunkMetadata{
					Place:       page.Place,
					Source:      page.Source,
					Section:     canonical,
					URL:         page.URL,
					ChunkIndex:  i,
					TotalChunks: len(texts),
				},
			})
		}
	}

	return out
}

// canonicalSection is one canonical label with its merged source text.
type canonicalSection struct {
	heading string
	text    string
}

// sortedSections groups raw headings by canonical label in deterministic
// order. Multiple raw headings normalizing to the same label (e.g. "Eat"
// and "Dining") are merged as one section text, joined by paragraph breaks,
// so their chunk sequence stays gap-free.
func sortedSections(sections map[string]string) []canonicalSection {
	byCanonical := make(map[section.Section][]string)
	for heading := range sections {
		canonical := section.Normalize(heading)
		byCanonical[canonical] = append(byCanonical[canonical], heading)
	}

	var out []canonicalSection
	for _, headings := range byCanonical {
		sort.Strings(headings)
		texts := make([]string, 0, len(headings))
		for _, h := range headings {
			texts = append(texts, sections[h])
		}
		out = append(out, canonicalSection{
			heading: headings[0],
			text:    strings.Join(texts, "\n\n"),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].heading < out[j].heading })
	return out
}

// split windows the section text greedily with overlap, snapping window
// ends to sentence or paragraph boundaries where possible. Windows that
// trim to the empty string are skipped.
func (c *Chunker) split(text string) []string {
	if len(text) <= c.size {
		t := strings.TrimSpace(text)
		if t == "" {
			return nil
		}
		return []string{t}
	}

	var out []string
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.snap(text, start, end)
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			out = append(out, piece)
		}

		if end >= len(text) {
			break
		}
		start = end - c.overlap
	}
	return out
}

// snap moves the tentative window end back to just after the last sentence
// terminator in the lookback window, falling back to the last paragraph
// break, and keeping the raw boundary when neither exists.
func (c *Chunker) snap(text string, start, end int) int {
	lookback := maxLookback
	if l := c.size / 10; l < lookback {
		lookback = l
	}
	if end-lookback <= start {
		lookback = end - start - 1
	}
	if lookback <= 0 {
		return end
	}

	window := text[end-lookback : end]

	for i := len(window) - 2; i >= 0; i-- {
		if isSentenceEnd(window[i]) && isSpace(window[i+1]) {
			return end - lookback + i + 1
		}
	}

	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return end - lookback + idx
	}

	return end
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
