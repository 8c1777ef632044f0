package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/model"
)

// Tool groups.
const (
	GroupProjects   = "projects"
	GroupContainers = "containers"
	GroupImages     = "images"
)

// Actor is recorded as the acting user for changes made through MCP.
const Actor = "mcp"

// toolDef is one tool before config is applied.
type toolDef struct {
	group  string
	name   string
	desc   string
	access string
	params []mcp.ToolOption
	call   func(ctx context.Context, a args) (any, error)
}

// args reads tool arguments. JSON numbers arrive as float64.
type args map[string]any

func (a args) str(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a args) integer(key string) int {
	switch v := a[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (a args) boolean(key string) bool {
	b, _ := a[key].(bool)
	return b
}

func (a args) list(key string) []string {
	switch v := a[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return strings.Split(v, ",")
	}
	return nil
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func projectName(desc string) mcp.ToolOption {
	return mcp.WithString("name", mcp.Required(), mcp.Description(desc))
}

// toolDefs lists every tool backed by services.
func toolDefs(svc *core.Services) []toolDef {
	return []toolDef{
		{
			group: GroupProjects, name: "list_projects", access: AccessRead,
			desc: "List managed compose projects, most recently updated first. Content is omitted.",
			params: []mcp.ToolOption{
				mcp.WithString("name", mcp.Description("Whitespace separated tokens that must all occur in the name")),
				mcp.WithString("content_keyword", mcp.Description("Whitespace separated tokens that must all occur in the compose file")),
				mcp.WithNumber("page_num", mcp.Description("Page number, starting at 1")),
				mcp.WithNumber("page_size", mcp.Description("Page size, at most 200")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				return svc.Project.Query(ctx, model.ProjectFilter{
					Name:           a.str("name"),
					ContentKeyword: a.str("content_keyword"),
					PageNum:        a.integer("page_num"),
					PageSize:       a.integer("page_size"),
				})
			},
		},
		{
			group: GroupProjects, name: "get_project", access: AccessRead,
			desc:   "Get a managed project including its docker-compose.yml content.",
			params: []mcp.ToolOption{projectName("Project name")},
			call: func(ctx context.Context, a args) (any, error) {
				return svc.Project.Get(ctx, a.str("name"))
			},
		},
		{
			group: GroupProjects, name: "add_project", access: AccessWrite,
			desc: "Create a managed project and write its docker-compose.yml.",
			params: []mcp.ToolOption{
				projectName("Project name: letters, digits, underscores and hyphens"),
				mcp.WithString("content", mcp.Description("docker-compose.yml content; a sample file is used when omitted")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				var content *string
				if c, ok := a["content"].(string); ok {
					content = &c
				}
				return svc.Project.Add(ctx, a.str("name"), content, Actor)
			},
		},
		{
			group: GroupProjects, name: "update_project", access: AccessWrite,
			desc: "Replace the docker-compose.yml content of a managed project.",
			params: []mcp.ToolOption{
				projectName("Project name"),
				mcp.WithString("content", mcp.Required(), mcp.Description("New docker-compose.yml content")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				return svc.Project.Update(ctx, a.str("name"), a.str("content"), Actor)
			},
		},
		{
			group: GroupProjects, name: "delete_project", access: AccessDelete,
			desc: "Delete a managed project. With cleanup the project is brought down first and kept if that fails.",
			params: []mcp.ToolOption{
				projectName("Project name"),
				mcp.WithBoolean("cleanup", mcp.Description("Run compose down before deleting")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				return svc.Project.Delete(ctx, a.str("name"), a.boolean("cleanup"))
			},
		},
		{
			group: GroupProjects, name: "run_project", access: AccessWrite,
			desc: "Run a compose lifecycle command on a managed project.",
			params: []mcp.ToolOption{
				projectName("Project name"),
				mcp.WithString("command", mcp.Required(), mcp.Enum(enumValues(model.ProjectCommands)...)),
			},
			call: func(ctx context.Context, a args) (any, error) {
				cmd, ok := model.ParseProjectCommand(a.str("command"))
				if !ok {
					return nil, fmt.Errorf("unknown project command %q", a.str("command"))
				}
				return svc.Project.Run(ctx, a.str("name"), cmd)
			},
		},
		{
			group: GroupProjects, name: "duplicate_project", access: AccessWrite,
			desc: "Create a new project with the compose file of an existing one.",
			params: []mcp.ToolOption{
				projectName("Source project name"),
				mcp.WithString("new_name", mcp.Required(), mcp.Description("Name of the copy")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				return svc.Project.Duplicate(ctx, a.str("name"), a.str("new_name"), Actor)
			},
		},
		{
			group: GroupProjects, name: "run_compose", access: AccessWrite,
			desc: "Run a compose command against compose files outside the project root, as reported by container labels.",
			params: []mcp.ToolOption{
				mcp.WithArray("compose_files", mcp.Required(),
					mcp.Description("Absolute compose file paths; the first one sets the working directory"),
					mcp.Items(map[string]any{"type": "string"})),
				mcp.WithString("command", mcp.Required(), mcp.Enum(enumValues(model.ComposeProjectCommands)...)),
			},
			call: func(ctx context.Context, a args) (any, error) {
				cmd, ok := model.ParseComposeProjectCommand(a.str("command"))
				if !ok {
					return nil, fmt.Errorf("unknown compose command %q", a.str("command"))
				}
				return svc.Project.RunCompose(ctx, a.list("compose_files"), cmd)
			},
		},
		{
			group: GroupProjects, name: "project_status", access: AccessRead,
			desc: "Count running and total containers of every managed project.",
			call: func(ctx context.Context, _ args) (any, error) {
				return svc.Container.StatusSummary(ctx)
			},
		},
		{
			group: GroupContainers, name: "list_containers", access: AccessRead,
			desc: "List containers grouped by compose project.",
			params: []mcp.ToolOption{
				mcp.WithString("keyword", mcp.Description("Matched against name, image, id and project")),
				mcp.WithString("state", mcp.Enum(enumValues(model.ContainerStates)...)),
				mcp.WithBoolean("managed_only", mcp.Description("Only containers of managed projects")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				f := model.ContainerFilter{Keyword: a.str("keyword"), ManagedOnly: a.boolean("managed_only")}
				if s := a.str("state"); s != "" {
					state, ok := model.ParseContainerState(s)
					if !ok {
						return nil, fmt.Errorf("unknown container state %q", s)
					}
					f.State = state
				}
				return svc.Container.Rows(ctx, f)
			},
		},
		{
			group: GroupContainers, name: "run_container", access: AccessDelete,
			desc: "Stop, pause, restart or delete a single container.",
			params: []mcp.ToolOption{
				mcp.WithString("id", mcp.Required(), mcp.Description("Container id or name")),
				mcp.WithString("command", mcp.Required(), mcp.Enum(enumValues(model.ContainerCommands)...)),
			},
			call: func(ctx context.Context, a args) (any, error) {
				cmd, ok := model.ParseContainerCommand(a.str("command"))
				if !ok {
					return nil, fmt.Errorf("unknown container command %q", a.str("command"))
				}
				return svc.Container.Run(ctx, a.str("id"), cmd)
			},
		},
		{
			group: GroupImages, name: "list_images", access: AccessRead,
			desc: "List local images with the managed projects referencing them.",
			call: func(ctx context.Context, _ args) (any, error) {
				return svc.Image.Query(ctx)
			},
		},
		{
			group: GroupImages, name: "delete_image", access: AccessDelete,
			desc: "Remove a local image with docker rmi.",
			params: []mcp.ToolOption{
				mcp.WithString("name", mcp.Required(), mcp.Description("Image reference, e.g. nginx:latest")),
			},
			call: func(ctx context.Context, a args) (any, error) {
				return svc.Image.Delete(ctx, a.str("name"))
			},
		},
	}
}

// BuildTools turns the tool definitions into server tools grouped by
// group name, applying config defaults and overrides.
func BuildTools(svc *core.Services, cfg *Config) map[string][]server.ServerTool {
	groups := make(map[string][]server.ServerTool)
	for _, def := range toolDefs(svc) {
		if cfg.disabled(def.name) {
			continue
		}
		override, hasOverride := cfg.Overrides[def.name]

		desc := def.desc
		if hasOverride && override.Description != "" {
			desc = override.Description
		}

		opts := []mcp.ToolOption{mcp.WithDescription(desc)}
		opts = append(opts, def.params...)
		opts = append(opts, buildAnnotations(def.access, cfg, override)...)

		groups[def.group] = append(groups[def.group], server.ServerTool{
			Tool:    mcp.NewTool(def.name, opts...),
			Handler: handler(def.call),
		})
	}
	return groups
}

// buildAnnotations creates MCP annotation options from config defaults and overrides.
func buildAnnotations(access string, cfg *Config, override ToolOverride) []mcp.ToolOption {
	d := cfg.Defaults[access]
	readOnly, destructive, idempotent := d.ReadOnly, d.Destructive, d.Idempotent
	if override.ReadOnly != nil {
		readOnly = override.ReadOnly
	}
	if override.Destructive != nil {
		destructive = override.Destructive
	}
	if override.Idempotent != nil {
		idempotent = override.Idempotent
	}

	var opts []mcp.ToolOption
	if readOnly != nil {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(*readOnly))
	}
	if destructive != nil {
		opts = append(opts, mcp.WithDestructiveHintAnnotation(*destructive))
	}
	if idempotent != nil {
		opts = append(opts, mcp.WithIdempotentHintAnnotation(*idempotent))
	}
	return opts
}

// handler adapts a service call to an MCP tool handler. Service errors
// become tool errors so the model sees the message.
func handler(call func(ctx context.Context, a args) (any, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := call(ctx, args(req.GetArguments()))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %s", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
