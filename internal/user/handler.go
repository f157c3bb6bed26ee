package user

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

// GetCurrentUser handles GET /api/auth/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.Logger.WarnContext(r.Context(), "GetCurrentUser: user not found in context")
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	profile, err := h.Service.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "GetCurrentUser: service error", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

// ListUsers handles GET /api/auth/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "ListUsers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profiles)
}
