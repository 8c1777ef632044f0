package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/dockpanel/internal/api/middleware"
	"github.com/edvin/dockpanel/internal/api/request"
	"github.com/edvin/dockpanel/internal/api/response"
	"github.com/edvin/dockpanel/internal/compose"
	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/model"
)

type Project struct {
	svc        *core.ProjectService
	containers *core.ContainerService
}

func NewProject(svc *core.ProjectService, containers *core.ContainerService) *Project {
	return &Project{svc: svc, containers: containers}
}

func (h *Project) List(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseProjectFilter(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.Query(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, page)
}

func (h *Project) Create(w http.ResponseWriter, r *http.Request) {
	var req request.AddProject
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Add(r.Context(), req.Name, req.Content, mw.Actor(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, p)
}

func (h *Project) Get(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	p, err := h.svc.Get(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, p)
}

func (h *Project) Update(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req request.UpdateProject
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Update(r.Context(), name, req.Content, mw.Actor(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, p)
}

// Delete removes a project. Cleanup is requested with cleanup=true or
// mode=delete-and-cleanup.
func (h *Project) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cleanup, err := deleteCleanup(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Delete(r.Context(), name, cleanup)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}

func deleteCleanup(r *http.Request) (bool, error) {
	q := r.URL.Query()
	if s := q.Get("mode"); s != "" {
		switch mode := model.DeleteMode(s); mode {
		case model.DeleteOnly, model.DeleteAndCleanup:
			return mode.Cleanup(), nil
		}
		return false, errInvalidParam("mode", s)
	}
	switch s := q.Get("cleanup"); s {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, errInvalidParam("cleanup", s)
	}
}

func (h *Project) Run(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req request.RunCommand
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmd, ok := model.ParseProjectCommand(req.Command)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, errInvalidParam("command", req.Command).Error())
		return
	}

	result, err := h.svc.Run(r.Context(), name, cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}

func (h *Project) Duplicate(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req request.DuplicateProject
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Duplicate(r.Context(), name, req.Name, mw.Actor(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, p)
}

func (h *Project) GetForm(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	form, err := h.svc.Form(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, form)
}

func (h *Project) UpdateForm(w http.ResponseWriter, r *http.Request) {
	name, err := request.RequireName(chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var form compose.FormData
	if err := request.Decode(r, &form); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.UpdateForm(r.Context(), name, form, mw.Actor(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, p)
}

// Status reports running and total container counts per managed project.
func (h *Project) Status(w http.ResponseWriter, r *http.Request) {
	summary, err := h.containers.StatusSummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, summary)
}
