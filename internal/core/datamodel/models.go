package datamodel

import (
	"github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	"github.com/frahmantamala/labtrack/internal/core/datamodel/audit"
	"github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	"github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	"github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&user.User{},
		&asset.Asset{},
		&ticket.Ticket{},
		&comment.Comment{},
		&audit.AuditLog{},
	}
}

// AutoMigrate creates or updates the schema. Used for sqlite and tests; the
// postgres deployment runs the goose migrations under db/migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
