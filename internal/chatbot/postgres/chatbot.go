package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/labtrack/internal/asset"
	"github.com/frahmantamala/labtrack/internal/chatbot"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	"gorm.io/gorm"
)

// ChatbotRepository answers the read-only questions the chatbot supports.
type ChatbotRepository struct {
	db *gorm.DB
}

func NewChatbotRepository(db *gorm.DB) chatbot.RepositoryAPI {
	return &ChatbotRepository{db: db}
}

func (r *ChatbotRepository) CountAssets(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&assetDatamodel.Asset{}).Count(&count).Error
	return count, err
}

func (r *ChatbotRepository) CountTickets(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ticketDatamodel.Ticket{}).Count(&count).Error
	return count, err
}

func (r *ChatbotRepository) CountTicketsFor(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ticketDatamodel.Ticket{}).
		Where("created_by = ? OR assigned_to = ?", userID, userID).
		Count(&count).Error
	return count, err
}

func (r *ChatbotRepository) AvailableAssetNames(ctx context.Context, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&assetDatamodel.Asset{}).
		Where("status = ?", string(asset.StatusAvailable)).
		Order("id ASC").
		Limit(limit).
		Pluck("name", &names).Error
	return names, err
}

func (r *ChatbotRepository) GetTicket(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error) {
	var t ticketDatamodel.Ticket
	if err := r.db.WithContext(ctx).Preload("Asset").Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
