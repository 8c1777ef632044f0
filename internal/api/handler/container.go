package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/dockpanel/internal/api/request"
	"github.com/edvin/dockpanel/internal/api/response"
	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/model"
)

type Container struct {
	svc *core.ContainerService
}

func NewContainer(svc *core.ContainerService) *Container {
	return &Container{svc: svc}
}

// List returns the flat container listing, narrowed by the filter.
func (h *Container) List(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseContainerFilter(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	containers, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, containers)
}

// Groups returns the containers aggregated into project rows.
func (h *Container) Groups(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseContainerFilter(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.svc.Rows(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, rows)
}

func (h *Container) Run(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req request.RunCommand
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmd, ok := model.ParseContainerCommand(req.Command)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, errInvalidParam("command", req.Command).Error())
		return
	}

	result, err := h.svc.Run(r.Context(), id, cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}
