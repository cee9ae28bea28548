package db

// KNNQuery is the input for vector similarity search.
// Filters are metadata-equality predicates on TAG fields, combined
// conjunctively; an empty map applies no pre-filter.
type KNNQuery struct {
	IndexName    string
	Filters      map[string]string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit, ordered by ascending distance.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
