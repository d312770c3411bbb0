package api

import (
	"net/http"
	"strings"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/search"
)

// SearchHandler handles keyword search requests.
type SearchHandler struct {
	deps Dependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps Dependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// searchRequest accepts the query in the body; query parameters win.
type searchRequest struct {
	Items  []model.ContentItem `json:"items"`
	Query  string              `json:"query"`
	Fields []string            `json:"fields" validate:"omitempty,dive,required"`
	Sort   string              `json:"sort"`
}

// HandleSearch handles POST and GET /search?q=&fields=a,b&sort= requests.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"

	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", WrapKind(op, ErrBadRequest, err))
		return
	}

	q := r.URL.Query()
	if q.Has("q") {
		req.Query = q.Get("q")
	}
	if raw := q.Get("fields"); raw != "" {
		req.Fields = splitFields(raw)
	}
	if q.Has("sort") {
		req.Sort = q.Get("sort")
	}

	order, err := search.ParseOrder(req.Sort)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	out, err := h.deps.Search(r.Context(), req.Query, req.Items, req.Fields, order)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if out == nil {
		out = []model.ContentItem{}
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: out})
}

func splitFields(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
