package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/model"
)

// Dispatcher turns lifecycle commands into docker invocations.
type Dispatcher struct {
	dockerBin string
}

func NewDispatcher(dockerBin string) *Dispatcher {
	if dockerBin == "" {
		dockerBin = "docker"
	}
	return &Dispatcher{dockerBin: dockerBin}
}

// Project builds "docker compose -f <composePath> ..." run inside dir.
func (d *Dispatcher) Project(dir, composePath string, cmd model.ProjectCommand) (executor.Command, error) {
	args, err := cmd.ComposeArgs()
	if err != nil {
		return executor.Command{}, validationError("%s", err)
	}
	return executor.Command{
		Dir:  dir,
		Name: d.dockerBin,
		Args: append([]string{"compose", "-f", composePath}, args...),
	}, nil
}

// Compose builds a compose invocation with one -f flag per file. files
// must already be normalized; the first one decides the working directory.
func (d *Dispatcher) Compose(files []string, cmd model.ComposeProjectCommand) (executor.Command, error) {
	sub, err := cmd.ComposeArgs()
	if err != nil {
		return executor.Command{}, validationError("%s", err)
	}
	if len(files) == 0 {
		return executor.Command{}, validationError("at least one compose file is required")
	}
	args := []string{"compose"}
	for _, f := range files {
		args = append(args, "-f", f)
	}
	return executor.Command{
		Dir:  filepath.Dir(files[0]),
		Name: d.dockerBin,
		Args: append(args, sub...),
	}, nil
}

func (d *Dispatcher) Container(id string, cmd model.ContainerCommand) (executor.Command, error) {
	args, err := cmd.DockerArgs(id)
	if err != nil {
		return executor.Command{}, validationError("%s", err)
	}
	return executor.Command{Name: d.dockerBin, Args: args}, nil
}

func (d *Dispatcher) RemoveImage(name string) executor.Command {
	return executor.Command{Name: d.dockerBin, Args: []string{"rmi", name}}
}

// NormalizeComposeFiles trims every path, drops empties and removes
// duplicates keeping the first occurrence.
func NormalizeComposeFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// checkComposeFiles requires every path to exist as a regular file.
func checkComposeFiles(files []string) error {
	for _, f := range files {
		info, err := os.Stat(f)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return validationError("compose file does not exist: %s", f)
		case err != nil:
			return fmt.Errorf("stat compose file %s: %w", f, err)
		case !info.Mode().IsRegular():
			return validationError("invalid compose file: %s", f)
		}
	}
	return nil
}
