package asset

import (
	"time"

	"github.com/frahmantamala/labtrack/internal/core/datamodel/user"
)

type Asset struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"column:name;size:100;not null"`
	Description *string    `gorm:"column:description;size:500"`
	QRCode      string     `gorm:"column:qr_code;size:100;uniqueIndex;not null"`
	Status      string     `gorm:"column:status;size:20;index;not null"`
	Location    *string    `gorm:"column:location;size:100"`
	Category    *string    `gorm:"column:category;size:50;index"`
	CreatedBy   int64      `gorm:"column:created_by;index;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	Creator     *user.User `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"`
}

func (Asset) TableName() string {
	return "assets"
}
