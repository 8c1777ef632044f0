package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/edvin/dockpanel/internal/api/response"
	"github.com/edvin/dockpanel/internal/core"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrPathSecurity):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrExecution):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with the status of its kind. Execution
// errors carry the command output as message.
func writeServiceError(w http.ResponseWriter, err error) {
	response.WriteError(w, statusFor(err), err.Error())
}

func errInvalidParam(param, value string) error {
	return fmt.Errorf("invalid %s: %q", param, value)
}
