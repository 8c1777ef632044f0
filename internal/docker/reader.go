// Package docker reads live container and image state from the docker CLI
// and classifies it against the managed projects.
package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/model"
)

// ProjectSource lists the managed projects. Any project store satisfies it.
type ProjectSource interface {
	ListNames(ctx context.Context) ([]string, error)
	ListContents(ctx context.Context) ([]model.ProjectContent, error)
}

// Reader queries docker ps and docker images.
type Reader struct {
	exec      executor.Executor
	layout    *layout.Layout
	projects  ProjectSource
	dockerBin string
	logger    zerolog.Logger
}

func NewReader(exec executor.Executor, l *layout.Layout, projects ProjectSource, dockerBin string, logger zerolog.Logger) *Reader {
	if dockerBin == "" {
		dockerBin = "docker"
	}
	return &Reader{
		exec:      exec,
		layout:    l,
		projects:  projects,
		dockerBin: dockerBin,
		logger:    logger.With().Str("component", "docker-reader").Logger(),
	}
}

func (r *Reader) docker(args ...string) executor.Command {
	return executor.Command{Name: r.dockerBin, Args: args}
}

// nonEmptyLines splits command output into trimmed, non-empty lines.
func nonEmptyLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (r *Reader) knownProjects(ctx context.Context) (map[string]bool, error) {
	names, err := r.projects.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project names: %w", err)
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return known, nil
}

// Ping asks the docker daemon for its version.
func (r *Reader) Ping(ctx context.Context) error {
	if _, err := r.exec.Run(ctx, r.docker("version", "--format", "{{.Server.Version}}")); err != nil {
		return fmt.Errorf("docker version: %w", err)
	}
	return nil
}
