package models

import "math"

// PageRequest selects one page of a listing. A nil *PageRequest means the
// whole collection.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip. Callers check Reachable first.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// Reachable reports whether the page's offset fits in an int. Page and Size
// must be at least 1.
func (p PageRequest) Reachable() bool {
	return p.Page-1 <= math.MaxInt/p.Size
}

// MsgPageTooLarge is reported when Reachable is false.
const MsgPageTooLarge = "page is too large for the requested size."

// PaginationInfo describes the page that was returned and the size of the
// whole scoped collection.
type PaginationInfo struct {
	Page         int   `json:"page"`
	Size         int   `json:"size"`
	TotalRecords int64 `json:"total_records"`
}

// ItemsResponse is a listing result. PaginationInfo is nil unless a page was
// requested.
type ItemsResponse[T any] struct {
	Items          []T             `json:"items"`
	PaginationInfo *PaginationInfo `json:"pagination_info"`
}
