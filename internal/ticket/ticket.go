package ticket

import (
	"context"
	"time"

	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/comment"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
)

type Ticket struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Description  *string           `json:"description"`
	Status       Status            `json:"status"`
	Priority     Priority          `json:"priority"`
	AssetID      *int64            `json:"assetId"`
	AssetName    *string           `json:"assetName"`
	CreatedBy    int64             `json:"createdBy"`
	CreatorName  *string           `json:"creatorName"`
	AssignedTo   *int64            `json:"assignedTo"`
	AssigneeName *string           `json:"assigneeName"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Comments     []comment.Comment `json:"comments"`
}

// Filter narrows a ticket listing. OwnerID, when set, keeps only tickets the
// user created or is assigned to.
type Filter struct {
	Status   Status
	Priority Priority
	AssetID  *int64
	OwnerID  *int64
}

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.User, filter Filter, page pagination.Params) (pagination.Page[Ticket], error)
	Get(ctx context.Context, actor *auth.User, id int64) (*Ticket, error)
	Create(ctx context.Context, actor *auth.User, dto CreateTicketDTO) (*Ticket, error)
	Update(ctx context.Context, actor *auth.User, id int64, dto UpdateTicketDTO) (*Ticket, error)
	Delete(ctx context.Context, actor *auth.User, id int64) error
}

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter, page pagination.Params) ([]ticketDatamodel.Ticket, int64, error)
	// GetByID returns nil, nil when the ticket does not exist. Comments are
	// only loaded when withComments is set.
	GetByID(ctx context.Context, id int64, withComments bool) (*ticketDatamodel.Ticket, error)
	Create(ctx context.Context, t *ticketDatamodel.Ticket) error
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	// Delete removes the ticket and its comments in one transaction.
	Delete(ctx context.Context, id int64) error
	AssetExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

func FromDataModel(t *ticketDatamodel.Ticket) *Ticket {
	out := &Ticket{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      Status(t.Status),
		Priority:    Priority(t.Priority),
		AssetID:     t.AssetID,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Comments:    make([]comment.Comment, 0, len(t.Comments)),
	}
	if t.Asset != nil {
		name := t.Asset.Name
		out.AssetName = &name
	}
	if t.Creator != nil {
		name := t.Creator.Username
		out.CreatorName = &name
	}
	if t.Assignee != nil {
		name := t.Assignee.Username
		out.AssigneeName = &name
	}
	for i := range t.Comments {
		out.Comments = append(out.Comments, *comment.FromDataModel(&t.Comments[i]))
	}
	return out
}
