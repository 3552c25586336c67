// Package query shapes post listings for read endpoints: text/tag filtering,
// field sorting and page windowing over a snapshot of the store.
package query

import (
	"errors"
	"sort"
	"strings"

	"github.com/inkwell-api/inkwell/internal/model"
)

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidDirection = errors.New("invalid sort direction")
)

const (
	SortTitle   = "title"
	SortContent = "content"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// PagedResult is one page of posts plus the pre-pagination total and the
// resolved window parameters.
type PagedResult struct {
	Posts   []model.Post `json:"posts"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// Search keeps posts whose title or content contains q (case-insensitive)
// and whose tag list contains tag (case-insensitive, exact). Empty filters
// pass everything.
func Search(posts []model.Post, q, tag string) []model.Post {
	q = strings.ToLower(q)
	matched := []model.Post{}
	for _, p := range posts {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Content), q) {
			continue
		}
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

// SortAndPaginate sorts posts by field/direction and slices out one page.
// An empty field leaves the input order untouched. The sort is stable, so
// equal keys keep their pre-sort relative order. Pages past the end yield
// an empty slice, never an error.
func SortAndPaginate(posts []model.Post, field, direction string, page, perPage int) (PagedResult, error) {
	switch field {
	case "", SortTitle, SortContent:
	default:
		return PagedResult{}, ErrInvalidSortField
	}
	switch direction {
	case "", DirectionAsc, DirectionDesc:
	default:
		return PagedResult{}, ErrInvalidDirection
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	sorted := append([]model.Post{}, posts...)
	if field != "" {
		desc := direction == DirectionDesc
		sort.SliceStable(sorted, func(i, j int) bool {
			a := sortKey(sorted[i], field)
			b := sortKey(sorted[j], field)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(sorted) {
		start = len(sorted)
	}
	if end > len(sorted) {
		end = len(sorted)
	}

	return PagedResult{
		Posts:   sorted[start:end],
		Total:   len(posts),
		Page:    page,
		PerPage: perPage,
	}, nil
}

func sortKey(p model.Post, field string) string {
	if field == SortContent {
		return strings.ToLower(p.Content)
	}
	return strings.ToLower(p.Title)
}

func hasTag(p model.Post, tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
