package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/model"
	"github.com/edvin/dockpanel/internal/platform"
)

// Filesystem treats the project tree itself as the store: every directory
// holding a docker-compose.yml is a project. IDs are derived from the name,
// timestamps from the file modification time, and audit users are not
// recorded.
type Filesystem struct {
	layout *layout.Layout
}

func NewFilesystem(l *layout.Layout) *Filesystem {
	return &Filesystem{layout: l}
}

// ProjectID is the stable id of a filesystem-backed project.
func ProjectID(name string) string {
	return platform.StableID("dockpanel:" + name)
}

func (s *Filesystem) load(name string) (*model.Project, error) {
	path, err := s.layout.ComposePath(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mtime := info.ModTime().UTC()
	return &model.Project{
		ID:        ProjectID(name),
		Name:      name,
		Content:   string(data),
		CreatedAt: mtime,
		UpdatedAt: mtime,
	}, nil
}

func (s *Filesystem) all(ctx context.Context) ([]model.Project, error) {
	names, err := s.layout.ListProjectNames()
	if err != nil {
		return nil, err
	}
	var projects []model.Project
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.load(name)
		if errors.Is(err, ErrNotFound) || errors.Is(err, layout.ErrInvalidProjectName) {
			continue
		}
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *Filesystem) matching(ctx context.Context, f model.ProjectFilter) ([]model.Project, error) {
	projects, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := projects[:0]
	for i := range projects {
		if f.Match(&projects[i]) {
			out = append(out, projects[i])
		}
	}
	return out, nil
}

func (s *Filesystem) FindByName(_ context.Context, name string) (*model.Project, error) {
	p, err := s.load(name)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}
	return p, nil
}

func (s *Filesystem) FindMany(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	f := filter.WithDefaults()
	projects, err := s.matching(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].UpdatedAt.Equal(projects[j].UpdatedAt) {
			return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
		}
		return projects[i].Name < projects[j].Name
	})

	start := f.Offset()
	if start >= len(projects) {
		return nil, nil
	}
	end := min(start+f.PageSize, len(projects))
	return projects[start:end], nil
}

func (s *Filesystem) Count(ctx context.Context, filter model.ProjectFilter) (int, error) {
	projects, err := s.matching(ctx, filter.WithDefaults())
	if err != nil {
		return 0, err
	}
	return len(projects), nil
}

// Create writes the compose file. A file that already holds different
// content is a duplicate; identical content is accepted so callers may
// sync the file before recording the project.
func (s *Filesystem) Create(_ context.Context, p *model.Project) error {
	existing, err := s.load(p.Name)
	switch {
	case err == nil && existing.Content != p.Content:
		return fmt.Errorf("create project %s: %w", p.Name, ErrDuplicate)
	case err == nil:
		return nil
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("create project %s: %w", p.Name, err)
	}
	if _, err := s.layout.SyncProject(p.Name, p.Content); err != nil {
		return fmt.Errorf("create project %s: %w", p.Name, err)
	}
	return nil
}

func (s *Filesystem) Update(_ context.Context, p *model.Project) error {
	if _, err := s.load(p.Name); err != nil {
		return fmt.Errorf("update project %s: %w", p.Name, err)
	}
	if _, err := s.layout.SyncProject(p.Name, p.Content); err != nil {
		return fmt.Errorf("update project %s: %w", p.Name, err)
	}
	return nil
}

func (s *Filesystem) Delete(_ context.Context, name string) error {
	if _, err := s.load(name); err != nil {
		return fmt.Errorf("delete project %s: %w", name, err)
	}
	if err := s.layout.RemoveProjectDir(name); err != nil {
		return fmt.Errorf("delete project %s: %w", name, err)
	}
	return nil
}

// ListNames returns every directory under the project root.
func (s *Filesystem) ListNames(_ context.Context) ([]string, error) {
	names, err := s.layout.ListProjectNames()
	if err != nil {
		return nil, fmt.Errorf("list project names: %w", err)
	}
	return names, nil
}

func (s *Filesystem) ListContents(ctx context.Context) ([]model.ProjectContent, error) {
	projects, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project contents: %w", err)
	}
	out := make([]model.ProjectContent, 0, len(projects))
	for _, p := range projects {
		out = append(out, model.ProjectContent{Name: p.Name, Content: p.Content})
	}
	return out, nil
}
