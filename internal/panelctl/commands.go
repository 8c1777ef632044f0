// Package panelctl implements the panelctl command line. Commands run the
// services in-process against the configured store and docker binary.
package panelctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/model"
)

// ActorName is recorded as the acting user for changes made by panelctl.
const ActorName = "panelctl"

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage error")

const usage = `Usage:
  panelctl list [-name TOKENS] [-content TOKENS] [-page N] [-size N]
  panelctl get <name>
  panelctl add [-f compose.yml] <name>
  panelctl update -f compose.yml <name>
  panelctl delete [-cleanup] <name>
  panelctl run <name> <up|down|restart|pull|logs>
  panelctl duplicate <from> <to>
  panelctl compose <up|down|restart|pull|logs|delete> <file>...
  panelctl status
  panelctl containers [-keyword K] [-state S] [-managed]
  panelctl container <id> <stop|pause|restart|delete>
  panelctl images
  panelctl rmi <image>
  panelctl seed -f seed.yaml`

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, usage)
}

// Run executes one panelctl command. Results are written to out as
// indented JSON, command output as plain text.
func Run(ctx context.Context, svc *core.Services, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		fs := newFlagSet(cmd)
		name := fs.String("name", "", "Name tokens")
		content := fs.String("content", "", "Content tokens")
		page := fs.Int("page", model.DefaultPageNum, "Page number")
		size := fs.Int("size", model.DefaultPageSize, "Page size")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		result, err := svc.Project.Query(ctx, model.ProjectFilter{
			Name: *name, ContentKeyword: *content, PageNum: *page, PageSize: *size,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, result)

	case "get":
		name, err := oneArg(rest)
		if err != nil {
			return err
		}
		p, err := svc.Project.Get(ctx, name)
		if err != nil {
			return err
		}
		return writeJSON(out, p)

	case "add":
		fs := newFlagSet(cmd)
		file := fs.String("f", "", "Compose file to use as content")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		name, err := oneArg(fs.Args())
		if err != nil {
			return err
		}
		var content *string
		if *file != "" {
			c, err := readFile(*file)
			if err != nil {
				return err
			}
			content = &c
		}
		p, err := svc.Project.Add(ctx, name, content, ActorName)
		if err != nil {
			return err
		}
		return writeJSON(out, p)

	case "update":
		fs := newFlagSet(cmd)
		file := fs.String("f", "", "Compose file with the new content (required)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		name, err := oneArg(fs.Args())
		if err != nil {
			return err
		}
		if *file == "" {
			return fmt.Errorf("%w: -f is required", ErrUsage)
		}
		c, err := readFile(*file)
		if err != nil {
			return err
		}
		p, err := svc.Project.Update(ctx, name, c, ActorName)
		if err != nil {
			return err
		}
		return writeJSON(out, p)

	case "delete":
		fs := newFlagSet(cmd)
		cleanup := fs.Bool("cleanup", false, "Run compose down before deleting")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		name, err := oneArg(fs.Args())
		if err != nil {
			return err
		}
		result, err := svc.Project.Delete(ctx, name, *cleanup)
		if err != nil {
			return err
		}
		return writeJSON(out, result)

	case "run":
		if len(rest) != 2 {
			return ErrUsage
		}
		c, ok := model.ParseProjectCommand(rest[1])
		if !ok {
			return fmt.Errorf("%w: unknown project command %q", ErrUsage, rest[1])
		}
		result, err := svc.Project.Run(ctx, rest[0], c)
		if err != nil {
			return err
		}
		return writeText(out, result.Output)

	case "duplicate":
		if len(rest) != 2 {
			return ErrUsage
		}
		p, err := svc.Project.Duplicate(ctx, rest[0], rest[1], ActorName)
		if err != nil {
			return err
		}
		return writeJSON(out, p)

	case "compose":
		if len(rest) < 2 {
			return ErrUsage
		}
		c, ok := model.ParseComposeProjectCommand(rest[0])
		if !ok {
			return fmt.Errorf("%w: unknown compose command %q", ErrUsage, rest[0])
		}
		result, err := svc.Project.RunCompose(ctx, rest[1:], c)
		if err != nil {
			return err
		}
		return writeText(out, result.Output)

	case "status":
		summary, err := svc.Container.StatusSummary(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, summary)

	case "containers":
		fs := newFlagSet(cmd)
		keyword := fs.String("keyword", "", "Match name, image, id or project")
		state := fs.String("state", "", "Only containers in this state")
		managed := fs.Bool("managed", false, "Only containers of managed projects")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		filter := model.ContainerFilter{Keyword: *keyword, ManagedOnly: *managed}
		if *state != "" {
			s, ok := model.ParseContainerState(*state)
			if !ok {
				return fmt.Errorf("%w: unknown state %q", ErrUsage, *state)
			}
			filter.State = s
		}
		rows, err := svc.Container.Rows(ctx, filter)
		if err != nil {
			return err
		}
		return writeJSON(out, rows)

	case "container":
		if len(rest) != 2 {
			return ErrUsage
		}
		c, ok := model.ParseContainerCommand(rest[1])
		if !ok {
			return fmt.Errorf("%w: unknown container command %q", ErrUsage, rest[1])
		}
		result, err := svc.Container.Run(ctx, rest[0], c)
		if err != nil {
			return err
		}
		return writeText(out, result.Output)

	case "images":
		images, err := svc.Image.Query(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, images)

	case "rmi":
		name, err := oneArg(rest)
		if err != nil {
			return err
		}
		result, err := svc.Image.Delete(ctx, name)
		if err != nil {
			return err
		}
		return writeText(out, result.Output)

	case "seed":
		fs := newFlagSet(cmd)
		file := fs.String("f", "", "Path to seed definition YAML file (required)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *file == "" {
			return fmt.Errorf("%w: -f is required", ErrUsage)
		}
		return Seed(ctx, svc, *file, out)
	}

	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	return args[0], nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(out io.Writer, s string) error {
	if s = strings.TrimRight(s, "\n"); s == "" {
		return nil
	}
	_, err := fmt.Fprintln(out, s)
	return err
}
