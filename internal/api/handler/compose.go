package handler

import (
	"net/http"

	"github.com/edvin/dockpanel/internal/api/request"
	"github.com/edvin/dockpanel/internal/api/response"
	"github.com/edvin/dockpanel/internal/core"
	"github.com/edvin/dockpanel/internal/model"
)

// Compose runs lifecycle commands on projects addressed by their compose
// files, such as those discovered from container labels.
type Compose struct {
	svc *core.ProjectService
}

func NewCompose(svc *core.ProjectService) *Compose {
	return &Compose{svc: svc}
}

func (h *Compose) Run(w http.ResponseWriter, r *http.Request) {
	var req request.RunCompose
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmd, ok := model.ParseComposeProjectCommand(req.Command)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, errInvalidParam("command", req.Command).Error())
		return
	}

	result, err := h.svc.RunCompose(r.Context(), req.ComposeFiles, cmd)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}
