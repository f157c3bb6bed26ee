package ticket

import (
	"time"

	"github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	"github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	"github.com/frahmantamala/labtrack/internal/core/datamodel/user"
)

type Ticket struct {
	ID          int64             `gorm:"primaryKey"`
	Title       string            `gorm:"column:title;size:200;not null"`
	Description *string           `gorm:"column:description;size:2000"`
	Status      string            `gorm:"column:status;size:20;index;not null"`
	Priority    string            `gorm:"column:priority;size:20;index;not null"`
	AssetID     *int64            `gorm:"column:asset_id;index"`
	CreatedBy   int64             `gorm:"column:created_by;index;not null"`
	AssignedTo  *int64            `gorm:"column:assigned_to;index"`
	CreatedAt   time.Time         `gorm:"column:created_at;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
	Asset       *asset.Asset      `gorm:"foreignKey:AssetID;constraint:OnDelete:SET NULL"`
	Creator     *user.User        `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"`
	Assignee    *user.User        `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"`
	Comments    []comment.Comment `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

func (Ticket) TableName() string {
	return "tickets"
}
