package request

// AddProject creates a project. Content falls back to the sample
// compose file when omitted.
type AddProject struct {
	Name    string  `json:"name" validate:"required,max=64,projectname"`
	Content *string `json:"content" validate:"omitempty,min=1,max=2097152"`
}

type UpdateProject struct {
	Content string `json:"content" validate:"required,max=2097152"`
}

type DuplicateProject struct {
	Name string `json:"name" validate:"required,max=64,projectname"`
}

type RunCommand struct {
	Command string `json:"command" validate:"required"`
}

type RunCompose struct {
	ComposeFiles []string `json:"compose_files" validate:"required,min=1,dive,required"`
	Command      string   `json:"command" validate:"required"`
}
