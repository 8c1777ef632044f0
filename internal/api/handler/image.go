package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/dockpanel/internal/api/response"
	"github.com/edvin/dockpanel/internal/core"
)

type Image struct {
	svc *core.ImageService
}

func NewImage(svc *core.ImageService) *Image {
	return &Image{svc: svc}
}

func (h *Image) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.Query(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, images)
}

func (h *Image) Names(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Names(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, names)
}

// Delete removes an image. The name is the rest of the path so that
// registry prefixes like ghcr.io/org/app:tag need no escaping.
func (h *Image) Delete(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	result, err := h.svc.Delete(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}
