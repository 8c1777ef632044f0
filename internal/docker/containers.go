package docker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/model"
)

// jsonFormat makes docker print one JSON object per line.
const jsonFormat = "{{json .}}"

// psLine is one line of docker ps --format "{{json .}}".
type psLine struct {
	ID        string `json:"ID"`
	Image     string `json:"Image"`
	Command   string `json:"Command"`
	CreatedAt string `json:"CreatedAt"`
	Status    string `json:"Status"`
	Names     string `json:"Names"`
	Labels    string `json:"Labels"`
	Ports     string `json:"Ports"`
}

// QueryContainers lists every container, running or not.
func (r *Reader) QueryContainers(ctx context.Context) ([]model.Container, error) {
	if _, err := r.layout.EnsureProjectRoot(); err != nil {
		return nil, err
	}

	output, err := r.exec.Run(ctx, r.docker("ps", "-a", "--format", jsonFormat))
	if err != nil {
		return nil, fmt.Errorf("docker ps: %w", err)
	}

	known, err := r.knownProjects(ctx)
	if err != nil {
		return nil, err
	}

	lines := parsePS(output)
	containers := make([]model.Container, 0, len(lines))
	for _, l := range lines {
		containers = append(containers, l.toContainer(r.layout, known))
	}
	r.logger.Debug().Int("containers", len(containers)).Msg("queried containers")
	return containers, nil
}

// parsePS decodes docker ps JSON lines. Lines that fail to decode are dropped.
func parsePS(output string) []psLine {
	var out []psLine
	for _, line := range nonEmptyLines(output) {
		var l psLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (l psLine) toContainer(lay *layout.Layout, known map[string]bool) model.Container {
	labels := ParseLabels(l.Labels)
	projectName := labels[LabelComposeProject]
	files := ConfigFiles(l.Labels)

	return model.Container{
		ID:                 l.ID,
		Name:               l.Names,
		Image:              l.Image,
		Command:            l.Command,
		Status:             l.Status,
		State:              model.ClassifyStatus(l.Status),
		CreatedAt:          l.CreatedAt,
		Ports:              l.Ports,
		ProjectName:        projectName,
		ComposeConfigFiles: files,
		IsManagedProject:   IsManaged(lay, files, projectName, known),
	}
}

// IsManaged decides project ownership. Compose file paths win when present:
// any file below the project root makes the container managed. Without
// files the compose project name must be a known project.
func IsManaged(lay *layout.Layout, files []string, projectName string, known map[string]bool) bool {
	if len(files) > 0 {
		for _, f := range files {
			if lay.IsUnderRoot(f) {
				return true
			}
		}
		return false
	}
	if projectName != "" {
		return known[projectName]
	}
	return false
}
