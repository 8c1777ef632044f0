package core

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxProjectNameLength = 64
	MaxContentBytes      = 2 * 1024 * 1024
	MaxContainerIDLength = 200
	MaxImageNameLength   = 200
)

var validate = validator.New()

var (
	projectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	imageNameRegex   = regexp.MustCompile(`^[a-zA-Z0-9._/:@-]+$`)
)

func init() {
	validate.RegisterValidation("projectname", func(fl validator.FieldLevel) bool {
		return projectNameRegex.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("imagename", func(fl validator.FieldLevel) bool {
		return imageNameRegex.MatchString(fl.Field().String())
	})
}

// fieldError renders the first failed rule of a validator error.
func fieldError(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError("invalid %s", field)
	}
	switch fe := verrs[0]; fe.Tag() {
	case "required":
		return validationError("%s is required", field)
	case "max":
		return validationError("%s must be at most %s characters", field, fe.Param())
	case "projectname":
		return validationError("%s may only contain letters, digits, underscores and hyphens", field)
	case "imagename":
		return validationError("%s has an invalid format", field)
	default:
		return validationError("invalid %s", field)
	}
}

func ValidateProjectName(name string) error {
	if err := validate.Var(name, "required,max=64,projectname"); err != nil {
		return fieldError("project name", err)
	}
	return nil
}

// ValidateContent checks the compose YAML size bounds in bytes.
func ValidateContent(content string) error {
	switch {
	case len(content) == 0:
		return validationError("project content is required")
	case len(content) > MaxContentBytes:
		return validationError("project content must not exceed 2MB")
	}
	return nil
}

func ValidateContainerID(id string) error {
	if err := validate.Var(id, "required,max=200"); err != nil {
		return fieldError("container id", err)
	}
	return nil
}

func ValidateImageName(name string) error {
	if err := validate.Var(name, "required,max=200,imagename"); err != nil {
		return fieldError("image name", err)
	}
	return nil
}

// ValidateComposeFiles requires a non-empty list of non-empty paths.
func ValidateComposeFiles(files []string) error {
	if len(files) == 0 {
		return validationError("at least one compose file is required")
	}
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			return validationError("compose file paths must not be empty")
		}
	}
	return nil
}
