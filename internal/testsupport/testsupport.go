// Package testsupport holds fixtures shared by the package test suites.
package testsupport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/core/datamodel"
	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a migrated in-memory database. A single connection keeps
// every query on the same in-memory instance.
func NewSQLiteDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := datamodel.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Logger discards everything below Error.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// CreateUser inserts an account and returns it as an authenticated actor.
func CreateUser(db *gorm.DB, username string, role auth.Role) (*auth.User, error) {
	record := &userDatamodel.User{
		Username:     username,
		Email:        username + "@labtrack.com",
		PasswordHash: "not-a-real-hash",
		Role:         string(role),
	}
	if err := db.Create(record).Error; err != nil {
		return nil, err
	}
	return &auth.User{ID: record.ID, Username: record.Username, Email: record.Email, Role: role}, nil
}

// AsActor attaches actor to every request, standing in for the auth middleware.
// A nil actor leaves the request unauthenticated.
func AsActor(actor *auth.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor != nil {
			r = r.WithContext(auth.ContextWithUser(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
