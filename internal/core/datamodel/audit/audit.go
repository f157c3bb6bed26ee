package audit

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         int64          `gorm:"primaryKey"`
	UserID     *int64         `gorm:"column:user_id;index"`
	Action     string         `gorm:"column:action;size:50;not null"`
	EntityType string         `gorm:"column:entity_type;size:50;not null;index:idx_audit_logs_entity"`
	EntityID   *int64         `gorm:"column:entity_id;index:idx_audit_logs_entity"`
	Details    datatypes.JSON `gorm:"column:details"`
	Timestamp  time.Time      `gorm:"column:timestamp;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
