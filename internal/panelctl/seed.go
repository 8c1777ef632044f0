package panelctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/model"
)

// Seed creates the projects declared in the YAML file at path. Existing
// projects are left alone unless their definition sets update. Progress is
// written to out.
func Seed(ctx context.Context, svc *core.Services, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	base := filepath.Dir(path)
	for _, def := range cfg.Projects {
		if err := seedProject(ctx, svc, base, def, out); err != nil {
			return fmt.Errorf("seed project %q: %w", def.Name, err)
		}
	}
	return nil
}

func seedProject(ctx context.Context, svc *core.Services, base string, def ProjectDef, out io.Writer) error {
	content, err := def.content(base)
	if err != nil {
		return err
	}

	existing, err := svc.Project.Get(ctx, def.Name)
	switch {
	case errors.Is(err, core.ErrNotFound):
		if _, err := svc.Project.Add(ctx, def.Name, content, ActorName); err != nil {
			return err
		}
		fmt.Fprintf(out, "Project %q: created\n", def.Name)

	case err != nil:
		return err

	case def.Update && content != nil && *content != existing.Content:
		if _, err := svc.Project.Update(ctx, def.Name, *content, ActorName); err != nil {
			return err
		}
		fmt.Fprintf(out, "Project %q: updated\n", def.Name)

	default:
		fmt.Fprintf(out, "Project %q: exists, skipped\n", def.Name)
		return nil
	}

	if def.Start {
		result, err := svc.Project.Run(ctx, def.Name, model.ProjectStart)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		fmt.Fprintf(out, "Project %q: started\n", def.Name)
		if result.Output != "" {
			fmt.Fprintln(out, result.Output)
		}
	}
	return nil
}

func (d ProjectDef) content(base string) (*string, error) {
	switch {
	case d.Content != "" && d.File != "":
		return nil, fmt.Errorf("content and file are mutually exclusive")
	case d.Content != "":
		c := d.Content
		return &c, nil
	case d.File != "":
		path := d.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read compose file: %w", err)
		}
		c := string(data)
		return &c, nil
	}
	return nil, nil
}
