package api

import (
	"fmt"
	"net/http"

	"github.com/okian/discovery/internal/domain/model"
)

// FeedHandler handles feed ranking requests.
type FeedHandler struct {
	deps Dependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

type feedRequest struct {
	Items []model.ContentItem `json:"items"`
	User  model.User          `json:"user"`
}

type feedResponse struct {
	Items     []model.ContentItem `json:"items"`
	Defaulted []string            `json:"defaulted,omitempty"`
}

// HandleRank handles POST /feed/rank requests.
func (h *FeedHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_feed"

	var req feedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", WrapKind(op, ErrBadRequest, err))
		return
	}

	feed, err := h.deps.RankFeed(r.Context(), req.Items, req.User)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	if len(feed.Defaulted) > 0 {
		w.Header().Set(WarningHeader, fmt.Sprintf("created_at missing on %d item(s), defaulted to now", len(feed.Defaulted)))
	}
	items := feed.Items
	if items == nil {
		items = []model.ContentItem{}
	}
	writeJSON(w, http.StatusOK, feedResponse{Items: items, Defaulted: feed.Defaulted})
}
