package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/api/handler"
	mw "github.com/edvin/dockpanel/internal/api/middleware"
	"github.com/edvin/dockpanel/internal/config"
	"github.com/edvin/dockpanel/internal/core"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router    chi.Router
	logger    zerolog.Logger
	services  *core.Services
	cfg       *config.Config
	readiness map[string]Pinger
}

// NewServer builds the router. readiness names the dependencies checked by
// /readyz; /metrics is served here unless a separate metrics address is set.
func NewServer(logger zerolog.Logger, services *core.Services, cfg *config.Config, readiness map[string]Pinger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger,
		services:  services,
		cfg:       cfg,
		readiness: readiness,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	if s.cfg.MetricsAddr == "" {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.cfg.AdminAPIKey))

		// Projects
		project := handler.NewProject(s.services.Project, s.services.Container)
		r.Get("/projects", project.List)
		r.Post("/projects", project.Create)
		r.Get("/projects/status", project.Status)
		r.Get("/projects/{name}", project.Get)
		r.Put("/projects/{name}", project.Update)
		r.Delete("/projects/{name}", project.Delete)
		r.Post("/projects/{name}/run", project.Run)
		r.Post("/projects/{name}/duplicate", project.Duplicate)
		r.Get("/projects/{name}/form", project.GetForm)
		r.Put("/projects/{name}/form", project.UpdateForm)

		// Compose files outside the project root
		compose := handler.NewCompose(s.services.Project)
		r.Post("/compose/run", compose.Run)

		// Containers
		container := handler.NewContainer(s.services.Container)
		r.Get("/containers", container.List)
		r.Get("/containers/groups", container.Groups)
		r.Post("/containers/{id}/run", container.Run)

		// Images
		image := handler.NewImage(s.services.Image)
		r.Get("/images", image.List)
		r.Get("/images/names", image.Names)
		r.Delete("/images/*", image.Delete)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.readiness))
	for name := range s.readiness {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := map[string]string{}
	healthy := true
	for _, name := range names {
		if err := s.readiness[name].Ping(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			s.logger.Warn().Err(err).Str("check", name).Msg("readiness check failed")
		} else {
			checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
