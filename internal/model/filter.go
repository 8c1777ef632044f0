package model

import (
	"strings"
	"time"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// ProjectFilter selects projects for a paginated query. Zero values mean
// "no constraint"; PageNum and PageSize fall back to DefaultPageNum and
// DefaultPageSize.
type ProjectFilter struct {
	ID             string
	Name           string
	ContentKeyword string
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	UpdatedAfter   *time.Time
	UpdatedBefore  *time.Time
	PageNum        int
	PageSize       int
}

// WithDefaults returns a copy with pagination normalized.
func (f ProjectFilter) WithDefaults() ProjectFilter {
	if f.PageNum < 1 {
		f.PageNum = DefaultPageNum
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.ID = strings.TrimSpace(f.ID)
	return f
}

// Offset is the number of rows skipped before the current page.
func (f ProjectFilter) Offset() int {
	return (f.PageNum - 1) * f.PageSize
}

// NameTokens splits the name filter on whitespace. Every token must be
// contained in the project name.
func (f ProjectFilter) NameTokens() []string {
	return strings.Fields(f.Name)
}

// ContentTokens splits the content keyword filter on whitespace.
func (f ProjectFilter) ContentTokens() []string {
	return strings.Fields(f.ContentKeyword)
}

// Match reports whether p satisfies every predicate of the filter.
// Backends without a query language use it directly.
func (f ProjectFilter) Match(p *Project) bool {
	if f.ID != "" && p.ID != f.ID {
		return false
	}
	for _, tok := range f.NameTokens() {
		if !strings.Contains(p.Name, tok) {
			return false
		}
	}
	for _, tok := range f.ContentTokens() {
		if !strings.Contains(p.Content, tok) {
			return false
		}
	}
	if f.CreatedAfter != nil && p.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && p.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	if f.UpdatedAfter != nil && p.UpdatedAt.Before(*f.UpdatedAfter) {
		return false
	}
	if f.UpdatedBefore != nil && p.UpdatedAt.After(*f.UpdatedBefore) {
		return false
	}
	return true
}

// ContainerFilter narrows the container listing before grouping.
type ContainerFilter struct {
	Keyword     string
	State       ContainerState
	ManagedOnly bool
}
