package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/docker"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/grouping"
	"github.com/edvin/dockpanel/internal/model"
)

// ContainerResult is the output of a container command.
type ContainerResult struct {
	ID     string `json:"id"`
	Output string `json:"output"`
}

type ContainerService struct {
	reader   *docker.Reader
	grouper  *grouping.Grouper
	exec     executor.Executor
	dispatch *Dispatcher
	logger   zerolog.Logger
}

func NewContainerService(deps Deps) *ContainerService {
	dispatch := deps.Dispatcher
	if dispatch == nil {
		dispatch = NewDispatcher("")
	}
	grouper := deps.Grouper
	if grouper == nil {
		grouper = grouping.NewGrouper("und")
	}
	return &ContainerService{
		reader:   deps.Reader,
		grouper:  grouper,
		exec:     deps.Exec,
		dispatch: dispatch,
		logger:   deps.Logger.With().Str("component", "container-service").Logger(),
	}
}

// Query lists every container with its project classification.
func (s *ContainerService) Query(ctx context.Context) ([]model.Container, error) {
	return s.reader.QueryContainers(ctx)
}

// List returns the containers matching filter.
func (s *ContainerService) List(ctx context.Context, filter model.ContainerFilter) ([]model.Container, error) {
	containers, err := s.reader.QueryContainers(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.Filter(containers, filter), nil
}

// Rows filters the container listing and groups it into project rows.
func (s *ContainerService) Rows(ctx context.Context, filter model.ContainerFilter) ([]model.ProjectRow, error) {
	containers, err := s.reader.QueryContainers(ctx)
	if err != nil {
		return nil, err
	}
	rows := s.grouper.Group(grouping.Filter(containers, filter))
	if rows == nil {
		rows = []model.ProjectRow{}
	}
	return rows, nil
}

// StatusSummary counts running and total containers per managed project.
func (s *ContainerService) StatusSummary(ctx context.Context) (map[string]model.ProjectStatus, error) {
	containers, err := s.reader.QueryContainers(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.StatusSummary(containers), nil
}

func (s *ContainerService) Run(ctx context.Context, id string, cmd model.ContainerCommand) (*ContainerResult, error) {
	if err := ValidateContainerID(id); err != nil {
		return nil, err
	}
	command, err := s.dispatch.Container(id, cmd)
	if err != nil {
		return nil, err
	}
	out, err := s.exec.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("container", id).Str("command", string(cmd)).Msg("container command finished")
	return &ContainerResult{ID: id, Output: out}, nil
}
