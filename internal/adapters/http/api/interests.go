package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/discovery/internal/domain/types"
)

// InterestsHandler exposes the interest profile.
type InterestsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewInterestsHandler creates a new interests handler.
func NewInterestsHandler(deps Dependencies, maxLimit int) *InterestsHandler {
	return &InterestsHandler{deps: deps, maxLimit: maxLimit}
}

type affinityResponse struct {
	Category string  `json:"category"`
	Affinity float64 `json:"affinity"`
}

type interestsResponse struct {
	Interests []types.InterestEntry `json:"interests"`
}

// HandleGet handles GET /interests/{category} requests. Unseen categories
// report 0.
func (h *InterestsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	writeJSON(w, http.StatusOK, affinityResponse{
		Category: category,
		Affinity: h.deps.Affinity(category),
	})
}

// HandleTop handles GET /interests?limit=N requests.
func (h *InterestsHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_interests"

	limit := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be a positive integer, got %q", raw)))
			return
		}
		limit = min(n, h.maxLimit)
	}

	top := h.deps.TopInterests(limit)
	if top == nil {
		top = []types.InterestEntry{}
	}
	writeJSON(w, http.StatusOK, interestsResponse{Interests: top})
}
