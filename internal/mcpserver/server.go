package mcpserver

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	mw "github.com/edvin/dockpanel/internal/api/middleware"
	"github.com/edvin/dockpanel/internal/core"
)

var groupDescriptions = map[string]string{
	GroupProjects:   "Manage docker compose projects: create, edit, start, stop and delete them.",
	GroupContainers: "Inspect containers grouped by compose project and act on single containers.",
	GroupImages:     "List and remove local docker images.",
}

// Server exposes the services as MCP tools over streamable HTTP.
type Server struct {
	router chi.Router
	logger zerolog.Logger
	cfg    *Config
}

// New mounts one MCP endpoint per tool group under /mcp plus /mcp/all.
// Every MCP route requires adminKey.
func New(cfg *Config, services *core.Services, adminKey string, logger zerolog.Logger) *Server {
	groups := BuildTools(services, cfg)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.RequestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var allTools []server.ServerTool
	router.Route("/mcp", func(r chi.Router) {
		r.Use(mw.Auth(adminKey))

		for _, groupName := range names {
			tools := groups[groupName]
			mcpSrv := server.NewMCPServer(
				"dockpanel-"+groupName,
				"1.0.0",
				server.WithInstructions(cfg.groupDescription(groupName)),
			)
			mcpSrv.AddTools(tools...)

			r.Mount("/"+groupName, server.NewStreamableHTTPServer(mcpSrv, server.WithEndpointPath("/")))
			allTools = append(allTools, tools...)

			logger.Info().
				Str("group", groupName).
				Int("tools", len(tools)).
				Msg("mounted MCP tool group")
		}

		allSrv := server.NewMCPServer(
			"dockpanel",
			"1.0.0",
			server.WithInstructions("Docker compose admin panel: projects, containers and images."),
		)
		allSrv.AddTools(allTools...)
		r.Mount("/all", server.NewStreamableHTTPServer(allSrv, server.WithEndpointPath("/")))
		logger.Info().Int("tools", len(allTools)).Msg("mounted unified MCP endpoint at /mcp/all")

		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			var lines []string
			for _, name := range names {
				lines = append(lines, fmt.Sprintf(`{"name":%q,"endpoint":"/mcp/%s","tools":%d,"description":%q}`,
					name, name, len(groups[name]), cfg.groupDescription(name)))
			}
			lines = append(lines, fmt.Sprintf(`{"name":"all","endpoint":"/mcp/all","tools":%d,"description":"All tools from every group"}`, len(allTools)))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("[" + strings.Join(lines, ",") + "]"))
		})
	})

	return &Server{
		router: router,
		logger: logger,
		cfg:    cfg,
	}
}

func (c *Config) groupDescription(group string) string {
	if d := c.Groups[group].Description; d != "" {
		return d
	}
	return groupDescriptions[group]
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
