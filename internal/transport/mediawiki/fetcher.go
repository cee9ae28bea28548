// Package mediawiki fetches travel-guide pages from MediaWiki-backed
// sources (Wikivoyage, Wikipedia) and parses their plain-text extracts
// into per-heading sections.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SaradaAthota/Voice-first-AI-travel-planning-assistant-sub001/internal/domain"
)

// apiEndpoints maps sources to their MediaWiki API endpoints.
var apiEndpoints = map[domain.Source]string{
	domain.SourceWikivoyage: "https://en.wikivoyage.org/w/api.php",
	domain.SourceWikipedia:  "https://en.wikipedia.org/w/api.php",
}

// pageURLBases maps sources to their article URL bases for citations.
var pageURLBases = map[domain.Source]string{
	domain.SourceWikivoyage: "https://en.wikivoyage.org/wiki/",
	domain.SourceWikipedia:  "https://en.wikipedia.org/wiki/",
}

// Config holds fetcher settings.
type Config struct {
	Timeout        time.Duration
	RequestsPerSec float64
	UserAgent      string
	Logger         *zap.Logger
	// BaseURL overrides the per-source API endpoint (tests).
	BaseURL string
}

// Fetcher retrieves and parses guide pages. Timeouts are bounded by the
// HTTP client; callers treat any failure as recoverable at pair
// granularity.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	baseURL   string
	logger    *zap.Logger
}

// New creates a MediaWiki page fetcher.
func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		userAgent: cfg.UserAgent,
		baseURL:   cfg.BaseURL,
		logger:    logger,
	}
}

// FetchPage retrieves the page for a place from the given source.
// A missing page returns domain.ErrPageNotFound; transport problems wrap
// domain.ErrFetchFailed.
func (f *Fetcher) FetchPage(ctx context.Context, place string, source domain.Source) (domain.ParsedPage, error) {
	endpoint := f.baseURL
	if endpoint == "" {
		var ok bool
		endpoint, ok = apiEndpoints[source]
		if !ok {
			return domain.ParsedPage{}, fmt.Errorf("%w: no endpoint for source %q", domain.ErrFetchFailed, source)
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return domain.ParsedPage{}, fmt.Errorf("%w: rate limiter: %w", domain.ErrFetchFailed, err)
	}

	extract, title, err := f.fetchExtract(ctx, endpoint, place)
	if err != nil {
		return domain.ParsedPage{}, err
	}

	page := domain.ParsedPage{
		Place:    place,
		Source:   source,
		URL:      pageURL(source, title),
		Sections: parseSections(extract),
	}

	f.logger.Debug("Fetched page",
		zap.String("place", place),
		zap.String("source", source.String()),
		zap.Int("sections", len(page.Sections)),
	)
	return page, nil
}

func (f *Fetcher) fetchExtract(ctx context.Context, endpoint, place string) (extract, title string, err error) {
	params := url.Values{
		"action":          {"query"},
		"prop":            {"extracts"},
		"explaintext":     {"1"},
		"exsectionformat": {"wiki"},
		"redirects":       {"1"},
		"format":          {"json"},
		"formatversion":   {"2"},
		"titles":          {place},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: build request: %w", domain.ErrFetchFailed, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: unexpected status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", "", fmt.Errorf("%w: read body: %w", domain.ErrFetchFailed, err)
	}

	var parsed struct {
		Query struct {
			Pages []struct {
				Title   string `json:"title"`
				Missing bool   `json:"missing"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", fmt.Errorf("%w: decode response: %w", domain.ErrFetchFailed, err)
	}

	if len(parsed.Query.Pages) == 0 {
		return "", "", domain.ErrPageNotFound
	}
	p := parsed.Query.Pages[0]
	if p.Missing || p.Extract == "" {
		return "", "", domain.ErrPageNotFound
	}

	return p.Extract, p.Title, nil
}

// parseSections splits a plain-text extract on level-2 wiki headings
// ("== Heading =="). Deeper headings are dropped and their text flows
// into the enclosing section. Lead text before the first heading is keyed
// by an empty heading and normalizes to Other downstream.
func parseSections(extract string) map[string]string {
	sections := make(map[string]string)
	var current string
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			if prev := sections[current]; prev != "" {
				text = prev + "\n\n" + text
			}
			sections[current] = text
		}
		buf.Reset()
	}

	for _, line := range strings.Split(extract, "\n") {
		if heading, level, ok := parseHeading(line); ok {
			if level == 2 {
				flush()
				current = heading
			}
			// deeper headings: skip the marker line, keep the text
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush()

	return sections
}

// parseHeading recognizes "== X ==" style lines, returning the heading
// text and its level.
func parseHeading(line string) (heading string, level int, ok bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 5 || !strings.HasPrefix(trimmed, "==") || !strings.HasSuffix(trimmed, "==") {
		return "", 0, false
	}

	left := 0
	for left < len(trimmed) && trimmed[left] == '=' {
		left++
	}
	right := 0
	for right < len(trimmed)-left && trimmed[len(trimmed)-1-right] == '=' {
		right++
	}
	if left != right || left < 2 {
		return "", 0, false
	}

	heading = strings.TrimSpace(trimmed[left : len(trimmed)-right])
	if heading == "" {
		return "", 0, false
	}
	return heading, left, true
}

func pageURL(source domain.Source, title string) string {
	base := pageURLBases[source]
	return base + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
