package request

import (
	"net/http"
	"strconv"

	"github.com/edvin/dockpanel/internal/model"
)

// Pagination holds parsed page parameters.
type Pagination struct {
	PageNum  int
	PageSize int
}

// ParsePagination reads page_num and page_size. Missing or malformed
// values fall back to the defaults; page_size is capped at the maximum.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{
		PageNum:  model.DefaultPageNum,
		PageSize: model.DefaultPageSize,
	}

	if s := r.URL.Query().Get("page_num"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.PageNum = n
		}
	}
	if s := r.URL.Query().Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.PageSize = n
		}
	}

	if p.PageSize > model.MaxPageSize {
		p.PageSize = model.MaxPageSize
	}

	return p
}
