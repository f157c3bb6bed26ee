package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	commentDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"github.com/frahmantamala/labtrack/internal/ticket"
	"gorm.io/gorm"
)

// TicketRepository implements ticket.RepositoryAPI using GORM
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) ticket.RepositoryAPI {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) filtered(ctx context.Context, f ticket.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&ticketDatamodel.Ticket{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.AssetID != nil {
		q = q.Where("asset_id = ?", *f.AssetID)
	}
	if f.OwnerID != nil {
		q = q.Where("(created_by = ? OR assigned_to = ?)", *f.OwnerID, *f.OwnerID)
	}
	return q
}

// List returns one page, newest first with ties in insertion order, plus the
// total number of matches.
func (r *TicketRepository) List(ctx context.Context, f ticket.Filter, page pagination.Params) ([]ticketDatamodel.Ticket, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []ticketDatamodel.Ticket
	err := r.filtered(ctx, f).
		Preload("Asset").
		Preload("Creator").
		Preload("Assignee").
		Order("created_at DESC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&tickets).Error
	return tickets, total, err
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64, withComments bool) (*ticketDatamodel.Ticket, error) {
	q := r.db.WithContext(ctx).
		Preload("Asset").
		Preload("Creator").
		Preload("Assignee")
	if withComments {
		q = q.Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).Preload("Comments.User")
	}

	var t ticketDatamodel.Ticket
	if err := q.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *ticketDatamodel.Ticket) error {
	return r.db.WithContext(ctx).Omit("Asset", "Creator", "Assignee", "Comments").Create(t).Error
}

// Update writes exactly the given columns; updated_at is supplied by the caller.
func (r *TicketRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&ticketDatamodel.Ticket{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&commentDatamodel.Comment{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&ticketDatamodel.Ticket{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *TicketRepository) AssetExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&assetDatamodel.Asset{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *TicketRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
