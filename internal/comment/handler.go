package comment

import (
	"net/http"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// CreateComment handles POST /api/tickets/{id}/comments
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	ticketID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateCommentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Create(r.Context(), actor, ticketID, dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "CreateComment: service error", "error", err, "ticket_id", ticketID, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

// DeleteComment handles DELETE /api/tickets/{id}/comments/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	ticketID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	commentID, err := h.PathID(r, "commentId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, ticketID, commentID); err != nil {
		h.Logger.WarnContext(r.Context(), "DeleteComment: service error", "error", err, "comment_id", commentID, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
