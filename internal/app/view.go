package app

import (
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/rankings"
)

// EmptyKind tells renderers why a page has no rows.
type EmptyKind int

// Empty states.
const (
	NotEmpty EmptyKind = iota
	// EmptyNoData means the backend has no rows for the filter combination.
	EmptyNoData
	// EmptyNoMatches means rows exist but none match the search text.
	EmptyNoMatches
	// EmptyNoSnapshot means historical mode is on without a snapshot date.
	EmptyNoSnapshot
)

func (k EmptyKind) String() string {
	switch k {
	case EmptyNoData:
		return "no data for this filter combination"
	case EmptyNoMatches:
		return "no matches for this search"
	case EmptyNoSnapshot:
		return "choose a snapshot date"
	default:
		return ""
	}
}

// View is what a renderer draws. Results must be treated as read-only.
type View struct {
	State filter.State
	// Query is the serialized filter, as written to the history sink.
	Query   string
	Results []rankings.Record
	Total   int
	Pager   rankings.Pager
	Facets  rankings.FacetSet
	Loading bool
	// Searching is true while typed search text waits for its debounce.
	Searching   bool
	Err         *FetchError
	Empty       EmptyKind
	DatasetSize int
}
