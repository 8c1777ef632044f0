package model

import (
	"time"
)

type Project struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	CreatedUser *string   `json:"created_user,omitempty" db:"created_user"`
	UpdatedUser *string   `json:"updated_user,omitempty" db:"updated_user"`
}

// ProjectSummary is the list view of a project; content is omitted.
type ProjectSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedUser *string   `json:"created_user,omitempty"`
	UpdatedUser *string   `json:"updated_user,omitempty"`
}

func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CreatedUser: p.CreatedUser,
		UpdatedUser: p.UpdatedUser,
	}
}

// ProjectContent pairs a project name with its compose YAML for usage scans.
type ProjectContent struct {
	Name    string
	Content string
}

// Page is one page of a paginated query.
type Page[T any] struct {
	PageNum  int `json:"page_num"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Data     []T `json:"data"`
}

// DefaultComposeContent is written for projects created without content.
const DefaultComposeContent = `services:
    app:
        image: nginx:latest
        ports:
            - "80:80"
`
