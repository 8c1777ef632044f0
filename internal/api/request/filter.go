package request

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edvin/dockpanel/internal/model"
)

// ParseProjectFilter builds a project query from the query string.
// Timestamps are RFC 3339 or unix milliseconds.
func ParseProjectFilter(r *http.Request) (model.ProjectFilter, error) {
	q := r.URL.Query()
	pg := ParsePagination(r)
	f := model.ProjectFilter{
		ID:             strings.TrimSpace(q.Get("id")),
		Name:           strings.TrimSpace(q.Get("name")),
		ContentKeyword: strings.TrimSpace(q.Get("content_keyword")),
		PageNum:        pg.PageNum,
		PageSize:       pg.PageSize,
	}

	bounds := []struct {
		param string
		dst   **time.Time
	}{
		{"created_after", &f.CreatedAfter},
		{"created_before", &f.CreatedBefore},
		{"updated_after", &f.UpdatedAfter},
		{"updated_before", &f.UpdatedBefore},
	}
	for _, b := range bounds {
		s := strings.TrimSpace(q.Get(b.param))
		if s == "" {
			continue
		}
		t, err := parseTime(s)
		if err != nil {
			return model.ProjectFilter{}, fmt.Errorf("invalid %s: %q", b.param, s)
		}
		*b.dst = &t
	}
	return f, nil
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

// ParseContainerFilter reads keyword, state and managed_only.
func ParseContainerFilter(r *http.Request) (model.ContainerFilter, error) {
	q := r.URL.Query()
	f := model.ContainerFilter{Keyword: q.Get("keyword")}

	if s := q.Get("state"); s != "" {
		state, ok := model.ParseContainerState(s)
		if !ok {
			return model.ContainerFilter{}, fmt.Errorf("invalid state: %q", s)
		}
		f.State = state
	}
	if s := q.Get("managed_only"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return model.ContainerFilter{}, fmt.Errorf("invalid managed_only: %q", s)
		}
		f.ManagedOnly = v
	}
	return f, nil
}
