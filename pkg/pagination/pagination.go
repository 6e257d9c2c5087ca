package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultTake = 50
	maxTake     = 100
)

// Params holds offset pagination parameters extracted from query strings.
// Admin list endpoints page with skip/take rather than page numbers.
type Params struct {
	Skip int `json:"skip"`
	Take int `json:"take"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Skip: 0, Take: defaultTake}
}

// FromRequest extracts skip/take parameters from an HTTP request.
// Invalid or out-of-range values fall back to the defaults; take is capped at 100.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if skip := r.URL.Query().Get("skip"); skip != "" {
		if v, err := strconv.Atoi(skip); err == nil && v >= 0 {
			p.Skip = v
		}
	}

	if take := r.URL.Query().Get("take"); take != "" {
		if v, err := strconv.Atoi(take); err == nil && v > 0 && v <= maxTake {
			p.Take = v
		}
	}

	return p
}

// Result wraps a paginated list response.
type Result[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Skip    int  `json:"skip"`
	Take    int  `json:"take"`
	HasMore bool `json:"hasMore"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, total int, params Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:    data,
		Total:   total,
		Skip:    params.Skip,
		Take:    params.Take,
		HasMore: params.Skip+len(data) < total,
	}
}
