package asset

import (
	"net/http"
	"strconv"
	"strings"

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

// ListAssets handles GET /api/assets. Unknown status values are ignored.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if status, ok := ParseStatus(q.Get("status")); ok {
		filter.Status = status
	}

	page, err := h.Service.List(r.Context(), filter, pagination.FromQuery(q))
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "ListAssets: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	a, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "GetAsset: service error", "error", err, "asset_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	var dto CreateAssetDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	a, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "CreateAsset: service error", "error", err, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/assets/"+strconv.FormatInt(a.ID, 10))
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
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

	var dto UpdateAssetDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	a, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "UpdateAsset: service error", "error", err, "asset_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
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
		h.Logger.WarnContext(r.Context(), "DeleteAsset: service error", "error", err, "asset_id", id, "user_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCategories handles GET /api/assets/categories
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "GetCategories: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, categories)
}
