package types

import "math"

// ThoughtSort selects the ordering of a thought listing.
type ThoughtSort string

const (
	// SortNone keeps the store's insertion order.
	SortNone          ThoughtSort = ""
	SortCreatedAt     ThoughtSort = "createdAt"
	SortCreatedAtDesc ThoughtSort = "createdAt_desc"
	SortCreatedAtAsc  ThoughtSort = "createdAt_asc"
	SortHearts        ThoughtSort = "hearts"
)

// ValidThoughtSorts lists the accepted values of the sort parameter.
var ValidThoughtSorts = []ThoughtSort{SortCreatedAt, SortCreatedAtDesc, SortCreatedAtAsc, SortHearts}

// Valid reports whether s is SortNone or one of ValidThoughtSorts.
func (s ThoughtSort) Valid() bool {
	if s == SortNone {
		return true
	}
	for _, v := range ValidThoughtSorts {
		if s == v {
			return true
		}
	}
	return false
}

// Newest reports whether s orders by creation time, newest first.
func (s ThoughtSort) Newest() bool {
	return s == SortCreatedAt || s == SortCreatedAtDesc
}

// ThoughtQuery is a validated filter, sort and page window over thoughts.
type ThoughtQuery struct {
	// MinHearts, when set, keeps thoughts with at least that many hearts.
	MinHearts *int

	// Message, when non-empty, keeps thoughts whose message contains it,
	// ignoring case.
	Message string

	// ID, when non-empty, keeps only the thought with that identifier.
	ID string

	Sort  ThoughtSort
	Page  int
	Limit int
}

// Offset is the number of matching thoughts skipped before the page starts.
// It saturates at math.MaxInt instead of wrapping.
func (q ThoughtQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// ThoughtPage is one window of a filtered, sorted thought listing.
type ThoughtPage struct {
	Thoughts []Thought `json:"thoughts"`
	// Total counts every matching thought, regardless of the window.
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	// PageSize is the number of thoughts actually returned.
	PageSize int `json:"pageSize"`
}
