package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/compose"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/model"
	"github.com/edvin/dockpanel/internal/platform"
	"github.com/edvin/dockpanel/internal/store"
)

// RunResult is the output of a lifecycle command.
type RunResult struct {
	Output string `json:"output"`
}

// DeleteResult names the deleted project. Output holds the compose down
// output when cleanup ran.
type DeleteResult struct {
	Name   string `json:"name"`
	Output string `json:"output,omitempty"`
}

type ProjectService struct {
	store    store.Store
	layout   *layout.Layout
	exec     executor.Executor
	dispatch *Dispatcher
	locks    *KeyLock
	logger   zerolog.Logger
	now      func() time.Time
}

func NewProjectService(deps Deps) *ProjectService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	dispatch := deps.Dispatcher
	if dispatch == nil {
		dispatch = NewDispatcher("")
	}
	return &ProjectService{
		store:    deps.Store,
		layout:   deps.Layout,
		exec:     deps.Exec,
		dispatch: dispatch,
		locks:    NewKeyLock(),
		logger:   deps.Logger.With().Str("component", "project-service").Logger(),
		now:      now,
	}
}

func actorRef(actor string) *string {
	if actor == "" {
		return nil
	}
	return &actor
}

// lock serializes work on name within this process and, through a lock
// file under the project root, with other processes sharing the root.
func (s *ProjectService) lock(name string) (func(), error) {
	unlock := s.locks.Lock(name)
	release, err := s.layout.LockProject(name)
	if err != nil {
		unlock()
		return nil, classify(err, name)
	}
	return func() {
		release()
		unlock()
	}, nil
}

// Add creates a project record and its compose file. A nil content uses
// model.DefaultComposeContent.
func (s *ProjectService) Add(ctx context.Context, name string, content *string, actor string) (*model.Project, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	if content != nil {
		if err := ValidateContent(*content); err != nil {
			return nil, err
		}
	}
	if _, err := s.layout.EnsureProjectRoot(); err != nil {
		return nil, err
	}

	unlock, err := s.lock(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, err = s.store.FindByName(ctx, name)
	if err == nil {
		return nil, conflictError("project %s already exists", name)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, classify(err, name)
	}
	exists, err := s.layout.ProjectDirExists(name)
	if err != nil {
		return nil, classify(err, name)
	}
	if exists {
		return nil, conflictError("project directory %s already exists", name)
	}

	body := model.DefaultComposeContent
	if content != nil {
		body = *content
	}
	if _, err := s.layout.SyncProject(name, body); err != nil {
		return nil, classify(err, name)
	}

	now := s.now().UTC()
	p := &model.Project{
		ID:          platform.NewID(),
		Name:        name,
		Content:     body,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedUser: actorRef(actor),
		UpdatedUser: actorRef(actor),
	}
	if err := s.store.Create(ctx, p); err != nil {
		if rmErr := s.layout.RemoveProjectDir(name); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("project", name).Msg("failed to roll back project directory")
		}
		return nil, classify(err, name)
	}

	s.logger.Info().Str("project", name).Msg("project added")
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, name string) (*model.Project, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	p, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, classify(err, name)
	}
	return p, nil
}

// Query returns one page of project summaries, most recently updated first.
func (s *ProjectService) Query(ctx context.Context, filter model.ProjectFilter) (*model.Page[model.ProjectSummary], error) {
	f := filter.WithDefaults()

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.FindMany(ctx, f)
	if err != nil {
		return nil, err
	}

	data := make([]model.ProjectSummary, 0, len(projects))
	for i := range projects {
		data = append(data, projects[i].Summary())
	}
	return &model.Page[model.ProjectSummary]{
		PageNum:  f.PageNum,
		PageSize: f.PageSize,
		Total:    total,
		Data:     data,
	}, nil
}

// Update replaces the content of an existing project and rewrites its
// compose file.
func (s *ProjectService) Update(ctx context.Context, name, content, actor string) (*model.Project, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	if err := ValidateContent(content); err != nil {
		return nil, err
	}
	if _, err := s.layout.EnsureProjectRoot(); err != nil {
		return nil, err
	}

	unlock, err := s.lock(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, classify(err, name)
	}
	p.Content = content
	p.UpdatedAt = s.now().UTC()
	p.UpdatedUser = actorRef(actor)

	if err := s.store.Update(ctx, p); err != nil {
		return nil, classify(err, name)
	}
	if _, err := s.layout.SyncProject(name, content); err != nil {
		return nil, classify(err, name)
	}

	s.logger.Info().Str("project", name).Msg("project updated")
	return p, nil
}

// Delete removes the project record and directory. With cleanup the
// project is first brought down with compose; a failed down aborts the
// delete and keeps everything in place.
func (s *ProjectService) Delete(ctx context.Context, name string, cleanup bool) (*DeleteResult, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	if _, err := s.layout.EnsureProjectRoot(); err != nil {
		return nil, err
	}

	unlock, err := s.lock(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.store.FindByName(ctx, name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, classify(err, name)
	}
	dirExists, err := s.layout.ProjectDirExists(name)
	if err != nil {
		return nil, classify(err, name)
	}
	if p == nil && !dirExists {
		return nil, notFoundError("project %s does not exist", name)
	}

	result := &DeleteResult{Name: name}
	if cleanup {
		out, err := s.down(ctx, name, p)
		if err != nil {
			s.logger.Warn().Err(err).Str("project", name).Msg("cleanup failed, project kept")
			return nil, err
		}
		result.Output = out
	}

	if p != nil {
		if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, classify(err, name)
		}
	}
	if err := s.layout.RemoveProjectDir(name); err != nil {
		return nil, classify(err, name)
	}

	s.logger.Info().Str("project", name).Bool("cleanup", cleanup).Msg("project deleted")
	return result, nil
}

// down runs "compose down" for a project about to be deleted. The stored
// content is synced first; without a record the file on disk is used if
// there is one.
func (s *ProjectService) down(ctx context.Context, name string, p *model.Project) (string, error) {
	dir, composePath, err := s.layout.Paths(name)
	if err != nil {
		return "", classify(err, name)
	}
	if p != nil {
		if _, err := s.layout.SyncProject(name, p.Content); err != nil {
			return "", classify(err, name)
		}
	} else if _, err := os.Stat(composePath); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	cmd, err := s.dispatch.Project(dir, composePath, model.ProjectStop)
	if err != nil {
		return "", err
	}
	return s.exec.Run(ctx, cmd)
}

// Run syncs the compose file from the stored content and runs cmd on it.
func (s *ProjectService) Run(ctx context.Context, name string, cmd model.ProjectCommand) (*RunResult, error) {
	if err := ValidateProjectName(name); err != nil {
		return nil, err
	}
	if _, err := s.layout.EnsureProjectRoot(); err != nil {
		return nil, err
	}

	unlock, err := s.lock(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, classify(err, name)
	}
	dir, composePath, err := s.layout.Paths(name)
	if err != nil {
		return nil, classify(err, name)
	}
	command, err := s.dispatch.Project(dir, composePath, cmd)
	if err != nil {
		return nil, err
	}
	if _, err := s.layout.EnsureComposeFile(dir, composePath, p.Content); err != nil {
		return nil, classify(err, name)
	}

	out, err := s.exec.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	return &RunResult{Output: out}, nil
}

// RunCompose runs cmd against arbitrary compose files, typically those
// reported by the labels of an unmanaged project.
func (s *ProjectService) RunCompose(ctx context.Context, files []string, cmd model.ComposeProjectCommand) (*RunResult, error) {
	if err := ValidateComposeFiles(files); err != nil {
		return nil, err
	}
	if _, err := cmd.ComposeArgs(); err != nil {
		return nil, validationError("%s", err)
	}
	normalized := NormalizeComposeFiles(files)
	if len(normalized) == 0 {
		return nil, validationError("at least one compose file is required")
	}
	if err := checkComposeFiles(normalized); err != nil {
		return nil, err
	}

	command, err := s.dispatch.Compose(normalized, cmd)
	if err != nil {
		return nil, err
	}
	out, err := s.exec.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	return &RunResult{Output: out}, nil
}

// Duplicate creates project to with the content of project from.
func (s *ProjectService) Duplicate(ctx context.Context, from, to, actor string) (*model.Project, error) {
	src, err := s.Get(ctx, from)
	if err != nil {
		return nil, err
	}
	return s.Add(ctx, to, &src.Content, actor)
}

// Form returns the editor view of a project's compose file.
func (s *ProjectService) Form(ctx context.Context, name string) (*compose.FormData, error) {
	p, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	f, err := compose.Parse(p.Content)
	if err != nil {
		return nil, validationError("parse compose file of %s: %s", name, err)
	}
	form := compose.ToFormData(f)
	form.Name = name
	return &form, nil
}

// UpdateForm renders form back to YAML over the stored document, so keys
// the form does not model survive, and saves the result.
func (s *ProjectService) UpdateForm(ctx context.Context, name string, form compose.FormData, actor string) (*model.Project, error) {
	p, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	original, err := compose.Parse(p.Content)
	if err != nil {
		return nil, validationError("parse compose file of %s: %s", name, err)
	}
	content, err := compose.FormDataToYAML(form, original)
	if err != nil {
		return nil, fmt.Errorf("render compose file of %s: %w", name, err)
	}
	return s.Update(ctx, name, content, actor)
}
