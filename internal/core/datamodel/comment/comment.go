package comment

import (
	"time"

	"github.com/frahmantamala/labtrack/internal/core/datamodel/user"
)

type Comment struct {
	ID        int64      `gorm:"primaryKey"`
	TicketID  int64      `gorm:"column:ticket_id;index;not null"`
	UserID    int64      `gorm:"column:user_id;index;not null"`
	Content   string     `gorm:"column:content;size:1000;not null"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	User      *user.User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

func (Comment) TableName() string {
	return "comments"
}
