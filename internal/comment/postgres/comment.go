package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/labtrack/internal/comment"
	commentDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) comment.RepositoryAPI {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) GetTicket(ctx context.Context, ticketID int64) (*ticketDatamodel.Ticket, error) {
	var t ticketDatamodel.Ticket
	if err := r.db.WithContext(ctx).Where("id = ?", ticketID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *commentDatamodel.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(c).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*commentDatamodel.Comment, error) {
	var c commentDatamodel.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&commentDatamodel.Comment{}).Error
}
