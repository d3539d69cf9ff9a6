// Package query turns thought listing query strings into a types.ThoughtQuery.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Idahel/js-project-api/types"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParamError reports a query parameter that cannot be used.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// ParseThoughtQuery reads hearts, message, id, sort, page and limit from
// values. Bad hearts or sort values fail; bad page or limit values fall back
// to their defaults.
func ParseThoughtQuery(values url.Values) (types.ThoughtQuery, error) {
	q := types.ThoughtQuery{
		Message: strings.TrimSpace(values.Get("message")),
		ID:      strings.TrimSpace(values.Get("id")),
		Page:    positiveOr(values.Get("page"), DefaultPage),
		Limit:   positiveOr(values.Get("limit"), DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// Any page this far out is past the end of every listing.
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}

	if raw, ok := lookup(values, "hearts"); ok {
		hearts, err := strconv.Atoi(raw)
		if err != nil || hearts < 0 {
			return types.ThoughtQuery{}, &ParamError{
				Param:   "hearts",
				Message: "Invalid 'hearts' parameter. Must be a number.",
			}
		}
		q.MinHearts = &hearts
	}

	if raw, ok := lookup(values, "sort"); ok {
		sort := types.ThoughtSort(raw)
		if !sort.Valid() {
			return types.ThoughtQuery{}, &ParamError{
				Param:   "sort",
				Message: fmt.Sprintf("Invalid 'sort' parameter. Valid options are: %s.", validSorts()),
			}
		}
		q.Sort = sort
	}

	return q, nil
}

// lookup treats a blank parameter the same as a missing one.
func lookup(values url.Values, key string) (string, bool) {
	raw := strings.TrimSpace(values.Get(key))
	return raw, raw != ""
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func validSorts() string {
	names := make([]string, 0, len(types.ValidThoughtSorts))
	for _, s := range types.ValidThoughtSorts {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
