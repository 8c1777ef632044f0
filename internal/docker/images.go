package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/dockpanel/internal/compose"
	"github.com/edvin/dockpanel/internal/model"
)

// usageScanLimit bounds the goroutines parsing project YAML at once.
const usageScanLimit = 8

// imagesLine is one line of docker images --format "{{json .}}".
type imagesLine struct {
	Repository string `json:"Repository"`
	Tag        string `json:"Tag"`
	ID         string `json:"ID"`
	CreatedAt  string `json:"CreatedAt"`
	Size       string `json:"Size"`
}

// QueryImages lists images with the projects that reference them.
// Images without a repository are left out.
func (r *Reader) QueryImages(ctx context.Context) ([]model.Image, error) {
	output, err := r.exec.Run(ctx, r.docker("images", "--format", jsonFormat))
	if err != nil {
		return nil, fmt.Errorf("docker images: %w", err)
	}

	contents, err := r.projects.ListContents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list project contents: %w", err)
	}
	usage, err := ImageUsage(ctx, contents)
	if err != nil {
		return nil, err
	}

	var images []model.Image
	for _, line := range nonEmptyLines(output) {
		var l imagesLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			continue
		}
		name := model.NormalizeImageName(l.Repository, l.Tag)
		if name == "" {
			continue
		}
		projects := usage[name]
		if projects == nil {
			projects = []string{}
		}
		images = append(images, model.Image{
			ID:         l.ID,
			Name:       name,
			Repository: l.Repository,
			Tag:        l.Tag,
			CreatedAt:  l.CreatedAt,
			Size:       l.Size,
			Projects:   projects,
		})
	}
	return images, nil
}

// QueryImageNames lists "repository:tag" names, skipping any with <none>.
func (r *Reader) QueryImageNames(ctx context.Context) ([]model.ImageName, error) {
	output, err := r.exec.Run(ctx, r.docker("images", "--format", "{{.Repository}}:{{.Tag}}"))
	if err != nil {
		return nil, fmt.Errorf("docker images: %w", err)
	}

	seen := make(map[string]bool)
	names := []model.ImageName{}
	for _, line := range nonEmptyLines(output) {
		if seen[line] || strings.Contains(line, "<none>") {
			continue
		}
		seen[line] = true
		names = append(names, model.ImageName{Name: line})
	}
	return names, nil
}

// ImageUsage maps each image reference to the sorted names of the projects
// using it. Projects are parsed concurrently; a project whose YAML does not
// parse contributes nothing.
func ImageUsage(ctx context.Context, projects []model.ProjectContent) (map[string][]string, error) {
	refs := make([][]string, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(usageScanLimit)
	for i, p := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := compose.ImageRefs(p.Content)
			if err != nil {
				return nil
			}
			refs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan project images: %w", err)
	}

	sets := make(map[string]map[string]bool)
	for i, p := range projects {
		for _, ref := range refs[i] {
			if sets[ref] == nil {
				sets[ref] = make(map[string]bool)
			}
			sets[ref][p.Name] = true
		}
	}

	usage := make(map[string][]string, len(sets))
	for ref, set := range sets {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		usage[ref] = names
	}
	return usage, nil
}
