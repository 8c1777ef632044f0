package core

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edvin/dockpanel/internal/docker"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/grouping"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/model"
	"github.com/edvin/dockpanel/internal/store"
)

// memStore is an in-memory store.Store.
type memStore struct {
	mu       sync.Mutex
	projects map[string]model.Project
	err      error
}

func newMemStore() *memStore {
	return &memStore{projects: map[string]model.Project{}}
}

func (m *memStore) FindByName(_ context.Context, name string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) matching(f model.ProjectFilter) []model.Project {
	var out []model.Project
	for _, p := range m.projects {
		if f.Match(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *memStore) FindMany(_ context.Context, f model.ProjectFilter) ([]model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(f)
	start := min(f.Offset(), len(all))
	end := min(start+f.PageSize, len(all))
	return all[start:end], nil
}

func (m *memStore) Count(_ context.Context, f model.ProjectFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(f)), nil
}

func (m *memStore) Create(_ context.Context, p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.Name]; ok {
		return store.ErrDuplicate
	}
	m.projects[p.Name] = *p
	return nil
}

func (m *memStore) Update(_ context.Context, p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.Name]; !ok {
		return store.ErrNotFound
	}
	m.projects[p.Name] = *p
	return nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[name]; !ok {
		return store.ErrNotFound
	}
	delete(m.projects, name)
	return nil
}

func (m *memStore) ListNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.projects))
	for n := range m.projects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStore) ListContents(_ context.Context) ([]model.ProjectContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ProjectContent, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, model.ProjectContent{Name: p.Name, Content: p.Content})
	}
	return out, nil
}

type testEnv struct {
	svc   *Services
	store *memStore
	exec  *executor.MockExecutor
	lay   *layout.Layout
	root  string
}

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := filepath.Join(t.TempDir(), "projects")
	lay, err := layout.New(root)
	require.NoError(t, err)

	st := newMemStore()
	exec := &executor.MockExecutor{}
	var (
		clockMu sync.Mutex
		clock   = testNow
	)
	deps := Deps{
		Store:      st,
		Layout:     lay,
		Exec:       exec,
		Reader:     docker.NewReader(exec, lay, st, "docker", zerolog.Nop()),
		Grouper:    grouping.NewGrouper("und"),
		Dispatcher: NewDispatcher("docker"),
		Logger:     zerolog.Nop(),
		Now: func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			clock = clock.Add(time.Minute)
			return clock
		},
	}
	return &testEnv{svc: NewServices(deps), store: st, exec: exec, lay: lay, root: root}
}

func strPtr(s string) *string {
	return &s
}
