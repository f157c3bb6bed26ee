package ticket

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
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

// ListTickets handles GET /api/tickets. Unparseable filters are ignored.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	q := r.URL.Query()
	var filter Filter
	if status, ok := ParseStatus(q.Get("status")); ok {
		filter.Status = status
	}
	if priority, ok := ParsePriority(q.Get("priority")); ok {
		filter.Priority = priority
	}
	if raw := q.Get("assetId"); raw != "" {
		if assetID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.AssetID = &assetID
		}
	}

	page, err := h.Service.List(r.Context(), actor, filter, pagination.FromQuery(q))
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "ListTickets: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "GetTicket: service error", "error", err, "ticket_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	var dto CreateTicketDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "CreateTicket: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/tickets/"+strconv.FormatInt(t.ID, 10))
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateTicketDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "UpdateTicket: service error", "error", err, "ticket_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.Logger.WarnContext(r.Context(), "DeleteTicket: service error", "error", err, "ticket_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
