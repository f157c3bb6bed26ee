// Package app wires repositories, services and handlers into the HTTP router.
package app

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/asset"
	assetPostgres "github.com/frahmantamala/labtrack/internal/asset/postgres"
	"github.com/frahmantamala/labtrack/internal/audit"
	"github.com/frahmantamala/labtrack/internal/auth"
	authPostgres "github.com/frahmantamala/labtrack/internal/auth/postgres"
	"github.com/frahmantamala/labtrack/internal/chatbot"
	chatbotPostgres "github.com/frahmantamala/labtrack/internal/chatbot/postgres"
	"github.com/frahmantamala/labtrack/internal/comment"
	commentPostgres "github.com/frahmantamala/labtrack/internal/comment/postgres"
	"github.com/frahmantamala/labtrack/internal/core/events"
	"github.com/frahmantamala/labtrack/internal/ticket"
	ticketPostgres "github.com/frahmantamala/labtrack/internal/ticket/postgres"
	"github.com/frahmantamala/labtrack/internal/transport"
	"github.com/frahmantamala/labtrack/internal/transport/middleware"
	"github.com/frahmantamala/labtrack/internal/transport/rest"
	"github.com/frahmantamala/labtrack/internal/user"
	userPostgres "github.com/frahmantamala/labtrack/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type App struct {
	Router      *chi.Mux
	Bus         *events.EventBus
	SQL         *sqlx.DB
	AuthLimiter *middleware.FixedWindowLimiter
}

// SQLDriverName maps the configured driver onto the database/sql driver
// name gorm registered, which sqlx uses to pick its bind style.
func SQLDriverName(driver string) string {
	if driver == internal.DriverPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// New builds the full application on top of an open gorm connection.
func New(cfg *internal.Config, db *gorm.DB, logger *slog.Logger) (*App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlxDB := sqlx.NewDb(sqlDB, SQLDriverName(cfg.Database.Driver))

	bus := events.NewEventBus(logger)
	audit.NewRecorder(sqlxDB, logger).Subscribe(bus)

	policy := auth.NewPolicy()
	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.JWTIssuer,
		cfg.Security.JWTAudience,
		cfg.Security.AccessTokenDuration,
	)

	authService := auth.NewService(authPostgres.NewRepository(db), tokens, bus, cfg.Security.BCryptCost, logger)
	userService := user.NewService(userPostgres.NewRepository(db), logger)
	assetService := asset.NewService(assetPostgres.NewAssetRepository(db), bus, logger)
	ticketService := ticket.NewService(ticketPostgres.NewTicketRepository(db), policy, bus, logger)
	commentService := comment.NewService(commentPostgres.NewCommentRepository(db), policy, bus, logger)
	chatbotService := chatbot.NewService(chatbotPostgres.NewChatbotRepository(db), logger)

	base := transport.NewBaseHandler(logger)
	handlers := rest.Handlers{
		Auth:    auth.NewHandler(base, authService),
		User:    user.NewHandler(base, userService),
		Asset:   asset.NewHandler(base, assetService),
		Ticket:  ticket.NewHandler(base, ticketService),
		Comment: comment.NewHandler(base, commentService),
		Chatbot: chatbot.NewHandler(base, chatbotService),
		Health:  rest.NewHealthHandler(sqlxDB, logger),
	}

	limiter := middleware.NewFixedWindowLimiter(
		cfg.RateLimit.Auth.PermitLimit,
		cfg.RateLimit.Auth.Window,
		cfg.RateLimit.Auth.QueueLimit,
	)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		AuthLimiter:    limiter,
		RBAC:           auth.NewRBACAuthorization(policy, logger),
		Logger:         logger,
	})

	return &App{
		Router:      router,
		Bus:         bus,
		SQL:         sqlxDB,
		AuthLimiter: limiter,
	}, nil
}

// Close releases background resources. The database is owned by the caller.
func (a *App) Close() {
	a.AuthLimiter.Stop()
}
