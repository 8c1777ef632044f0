// Package store persists project records.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edvin/dockpanel/internal/model"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrDuplicate = errors.New("project already exists")
)

// Store is the project record repository. Names are unique.
type Store interface {
	// FindByName returns ErrNotFound when no project has the name.
	FindByName(ctx context.Context, name string) (*model.Project, error)
	// FindMany returns one page of matching projects, newest update first.
	FindMany(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error)
	Count(ctx context.Context, filter model.ProjectFilter) (int, error)
	// Create returns ErrDuplicate when the name is taken.
	Create(ctx context.Context, p *model.Project) error
	// Update replaces content, updated_at and updated_user of the named project.
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, name string) error
	ListNames(ctx context.Context) ([]string, error)
	ListContents(ctx context.Context) ([]model.ProjectContent, error)
}

const projectColumns = "id, name, content, created_at, updated_at, created_user, updated_user"

// whereClause renders the filter predicates. placeholder returns the bind
// marker for the n-th argument (1-based); contains renders a
// case-sensitive substring test of column against a bind marker.
func whereClause(f model.ProjectFilter, placeholder func(n int) string, contains func(column, bind string) string, ts func(v any) any, args []any) (string, []any) {
	var conds []string
	add := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if f.ID != "" {
		conds = append(conds, "id = "+add(f.ID))
	}
	for _, tok := range f.NameTokens() {
		conds = append(conds, contains("name", add(tok)))
	}
	for _, tok := range f.ContentTokens() {
		conds = append(conds, contains("content", add(tok)))
	}
	if f.CreatedAfter != nil {
		conds = append(conds, "created_at >= "+add(ts(*f.CreatedAfter)))
	}
	if f.CreatedBefore != nil {
		conds = append(conds, "created_at <= "+add(ts(*f.CreatedBefore)))
	}
	if f.UpdatedAfter != nil {
		conds = append(conds, "updated_at >= "+add(ts(*f.UpdatedAfter)))
	}
	if f.UpdatedBefore != nil {
		conds = append(conds, "updated_at <= "+add(ts(*f.UpdatedBefore)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func pgPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func sqlitePlaceholder(int) string {
	return "?"
}
