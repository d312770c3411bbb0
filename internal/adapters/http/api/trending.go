package api

import (
	"net/http"

	"github.com/okian/discovery/internal/domain/model"
)

// TrendingHandler handles trending requests.
type TrendingHandler struct {
	deps Dependencies
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(deps Dependencies) *TrendingHandler {
	return &TrendingHandler{deps: deps}
}

// HandleTrending handles POST and GET /trending requests.
func (h *TrendingHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.trending"

	var req itemsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.Trending(r.Context(), req.Items)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if out == nil {
		out = []model.ContentItem{}
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: out})
}
