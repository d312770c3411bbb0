package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/discovery/internal/domain/model"
)

// InteractionsHandler handles telemetry from UI collaborators.
type InteractionsHandler struct {
	deps Dependencies
}

// NewInteractionsHandler creates a new interactions handler.
func NewInteractionsHandler(deps Dependencies) *InteractionsHandler {
	return &InteractionsHandler{deps: deps}
}

type interactionRequest struct {
	EventID  string    `json:"event_id,omitempty" validate:"omitempty,max=128"`
	Kind     string    `json:"kind" validate:"required"`
	Category string    `json:"category,omitempty"`
	TS       time.Time `json:"ts,omitempty"`
}

func (r interactionRequest) toModel() model.Interaction {
	ts := r.TS
	if ts.IsZero() {
		ts = time.Now()
	}
	return model.Interaction{
		EventID:  r.EventID,
		Kind:     model.InteractionKind(r.Kind),
		Category: r.Category,
		TS:       ts,
	}
}

type batchRequest struct {
	Interactions []interactionRequest `json:"interactions" validate:"required,min=1,max=10000,dive"`
}

type batchResponse struct {
	BatchID  string `json:"batch_id"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// HandlePost handles POST /interactions requests. The interaction is applied
// synchronously; duplicates are acknowledged the same way.
func (h *InteractionsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_interaction"

	var req interactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	in := req.toModel()
	kind, err := model.ParseInteractionKind(req.Kind)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	in.Kind = kind

	if _, err := h.deps.RecordInteraction(r.Context(), in); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBatch handles POST /interactions/batch requests. Interactions are
// queued for the worker pool; a full queue answers 429 when nothing fits.
func (h *InteractionsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_interaction_batch"

	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ins := make([]model.Interaction, len(req.Interactions))
	for i, ir := range req.Interactions {
		ins[i] = ir.toModel()
		kind, err := model.ParseInteractionKind(ir.Kind)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		ins[i].Kind = kind
	}

	accepted, err := h.deps.EnqueueInteractions(r.Context(), ins)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if accepted == 0 {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, batchResponse{
		BatchID:  uuid.NewString(),
		Accepted: accepted,
		Rejected: len(ins) - accepted,
	})
}
