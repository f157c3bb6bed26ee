package comment

import (
	"context"
	"time"

	"github.com/frahmantamala/labtrack/internal/auth"
	commentDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
)

type Comment struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticketId"`
	UserID    int64     `json:"userId"`
	UserName  *string   `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ServiceAPI interface {
	Create(ctx context.Context, actor *auth.User, ticketID int64, dto CreateCommentDTO) (*Comment, error)
	Delete(ctx context.Context, actor *auth.User, ticketID, commentID int64) error
}

type RepositoryAPI interface {
	// GetTicket returns nil, nil when the ticket does not exist.
	GetTicket(ctx context.Context, ticketID int64) (*ticketDatamodel.Ticket, error)
	Create(ctx context.Context, c *commentDatamodel.Comment) error
	// GetByID returns nil, nil when the comment does not exist.
	GetByID(ctx context.Context, id int64) (*commentDatamodel.Comment, error)
	Delete(ctx context.Context, id int64) error
}

func FromDataModel(c *commentDatamodel.Comment) *Comment {
	out := &Comment{
		ID:        c.ID,
		TicketID:  c.TicketID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	if c.User != nil {
		name := c.User.Username
		out.UserName = &name
	}
	return out
}
