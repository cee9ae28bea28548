package domain

import "fmt"

// IngestionResult is the per-(place, source) outcome of one ingestion run.
// Immutable after creation; aggregated by the orchestrator into a run summary.
type IngestionResult struct {
	place             string
	source            Source
	sectionsProcessed int
	chunksCreated     int
	success           bool
	err               string
}

// NewSuccess creates a successful ingestion result.
func NewSuccess(place string, source Source, sectionsProcessed, chunksCreated int) IngestionResult {
	return IngestionResult{
		place:             place,
		source:            source,
		sectionsProcessed: sectionsProcessed,
		chunksCreated:     chunksCreated,
		success:           true,
	}
}

// NewFailure creates a failed ingestion result carrying the error description.
func NewFailure(place string, source Source, err error) IngestionResult {
	return IngestionResult{
		place:  place,
		source: source,
		err:    err.Error(),
	}
}

// Place returns the place identifier.
func (r IngestionResult) Place() string { return r.place }

// Source returns the source identifier.
func (r IngestionResult) Source() Source { return r.source }

// SectionsProcessed returns the count of target sections chunked.
func (r IngestionResult) SectionsProcessed() int { return r.sectionsProcessed }

// ChunksCreated returns the count of chunks stored.
func (r IngestionResult) ChunksCreated() int { return r.chunksCreated }

// Success reports whether the pair ingested cleanly.
func (r IngestionResult) Success() bool { return r.success }

// Err returns the error description, empty on success.
func (r IngestionResult) Err() string { return r.err }

// String renders a one-line summary for logs.
func (r IngestionResult) String() string {
	if r.success {
		return fmt.Sprintf("%s/%s: %d sections, %d chunks", r.place, r.source, r.sectionsProcessed, r.chunksCreated)
	}
	return fmt.Sprintf("%s/%s: failed: %s", r.place, r.source, r.err)
}
