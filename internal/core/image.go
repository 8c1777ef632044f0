package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/docker"
	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/model"
)

type ImageResult struct {
	Name   string `json:"name"`
	Output string `json:"output,omitempty"`
}

type ImageService struct {
	reader   *docker.Reader
	exec     executor.Executor
	dispatch *Dispatcher
	logger   zerolog.Logger
}

func NewImageService(deps Deps) *ImageService {
	dispatch := deps.Dispatcher
	if dispatch == nil {
		dispatch = NewDispatcher("")
	}
	return &ImageService{
		reader:   deps.Reader,
		exec:     deps.Exec,
		dispatch: dispatch,
		logger:   deps.Logger.With().Str("component", "image-service").Logger(),
	}
}

// Query lists images with the managed projects referencing each.
func (s *ImageService) Query(ctx context.Context) ([]model.Image, error) {
	return s.reader.QueryImages(ctx)
}

// Names lists the distinct repository:tag names.
func (s *ImageService) Names(ctx context.Context) ([]model.ImageName, error) {
	return s.reader.QueryImageNames(ctx)
}

func (s *ImageService) Delete(ctx context.Context, name string) (*ImageResult, error) {
	if err := ValidateImageName(name); err != nil {
		return nil, err
	}
	out, err := s.exec.Run(ctx, s.dispatch.RemoveImage(name))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("image", name).Msg("image removed")
	return &ImageResult{Name: name, Output: out}, nil
}
