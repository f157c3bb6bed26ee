package rest

import (
	"log/slog"

	"github.com/frahmantamala/labtrack/internal/asset"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/chatbot"
	"github.com/frahmantamala/labtrack/internal/comment"
	"github.com/frahmantamala/labtrack/internal/ticket"
	"github.com/frahmantamala/labtrack/internal/transport/middleware"
	"github.com/frahmantamala/labtrack/internal/transport/swagger"
	"github.com/frahmantamala/labtrack/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups the per-module HTTP handlers mounted under /api.
type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Asset   *asset.Handler
	Ticket  *ticket.Handler
	Comment *comment.Handler
	Chatbot *chatbot.Handler
	Health  *HealthHandler
}

type Options struct {
	AllowedOrigins []string
	AuthLimiter    *middleware.FixedWindowLimiter
	RBAC           *auth.RBACAuthorization
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	rbac := opts.RBAC

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.CORS(opts.AllowedOrigins))

	router.Get(swagger.SpecPath, swagger.SpecHandler().ServeHTTP)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(lr chi.Router) {
				lr.Use(middleware.RateLimit(opts.AuthLimiter, opts.Logger))
				lr.Post("/register", h.Auth.Register)
				lr.Post("/login", h.Auth.Login)
			})

			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)
				pr.Get("/me", h.User.GetCurrentUser)
				pr.With(rbac.Require(auth.OpUserList)).Get("/users", h.User.ListUsers)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/assets", func(ar chi.Router) {
				ar.Get("/", h.Asset.ListAssets)
				ar.Get("/categories", h.Asset.GetCategories)
				ar.Get("/{id}", h.Asset.GetAsset)
				ar.With(rbac.Require(auth.OpAssetCreate)).Post("/", h.Asset.CreateAsset)
				ar.With(rbac.Require(auth.OpAssetUpdate)).Put("/{id}", h.Asset.UpdateAsset)
				ar.With(rbac.Require(auth.OpAssetDelete)).Delete("/{id}", h.Asset.DeleteAsset)
			})

			pr.Route("/tickets", func(tr chi.Router) {
				tr.Get("/", h.Ticket.ListTickets)
				tr.Post("/", h.Ticket.CreateTicket)
				tr.Get("/{id}", h.Ticket.GetTicket)
				tr.Put("/{id}", h.Ticket.UpdateTicket)
				tr.With(rbac.Require(auth.OpTicketDelete)).Delete("/{id}", h.Ticket.DeleteTicket)

				tr.Post("/{id}/comments", h.Comment.CreateComment)
				tr.Delete("/{id}/comments/{commentId}", h.Comment.DeleteComment)
			})

			pr.Route("/chatbot", func(cr chi.Router) {
				cr.Post("/query", h.Chatbot.Query)
				cr.Get("/help", h.Chatbot.Help)
			})
		})
	})
}
