package core

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/docker"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/grouping"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/store"
)

// Deps holds the process-wide handles the services run on. It is built
// once at startup and passed down explicitly.
type Deps struct {
	Store      store.Store
	Layout     *layout.Layout
	Exec       executor.Executor
	Reader     *docker.Reader
	Grouper    *grouping.Grouper
	Dispatcher *Dispatcher
	Logger     zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

type Services struct {
	Project   *ProjectService
	Container *ContainerService
	Image     *ImageService
}

func NewServices(deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = NewDispatcher("")
	}
	return &Services{
		Project:   NewProjectService(deps),
		Container: NewContainerService(deps),
		Image:     NewImageService(deps),
	}
}
