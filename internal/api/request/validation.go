package request

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/dockpanel/internal/core"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("projectname", func(fl validator.FieldLevel) bool {
		return core.ValidateProjectName(fl.Field().String()) == nil
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// RequireName checks a project name taken from the URL.
func RequireName(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required project name")
	}
	if err := core.ValidateProjectName(s); err != nil {
		return "", err
	}
	return s, nil
}
