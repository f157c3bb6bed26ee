package auth

import (
	"net/http"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/transport"
	"github.com/frahmantamala/labtrack/pkg/logger"
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "Register: service error", "error", err, "username", dto.Username)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "Login: service error", "error", err, "username", dto.Username)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware trusts the (userId, role) carried by a valid token and puts
// the actor into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.DebugContext(r.Context(), "auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, internal.ErrMissingToken)
			return
		}

		user, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.WarnContext(r.Context(), "auth middleware: token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "user_id", user.ID, "role", user.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
