package asset

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	"github.com/frahmantamala/labtrack/internal/core/common/validation"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	"github.com/frahmantamala/labtrack/internal/core/events"
	"gorm.io/gorm"
)

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, filter Filter, page pagination.Params) (pagination.Page[Asset], error) {
	records, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[Asset]{}, internal.NewInternalError("failed to list assets", err)
	}

	items := make([]Asset, 0, len(records))
	for i := range records {
		items = append(items, *FromDataModel(&records[i]))
	}
	return pagination.NewPage(items, total, page), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Asset, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get asset", err)
	}
	if record == nil {
		return nil, internal.ErrAssetNotFound
	}
	return FromDataModel(record), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateAssetDTO) (*Asset, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	status := StatusAvailable
	if strings.TrimSpace(dto.Status) != "" {
		parsed, ok := ParseStatus(dto.Status)
		if !ok {
			return nil, invalidStatus()
		}
		status = parsed
	}

	qrCode := NewQRCode()
	if dto.QRCode != nil && strings.TrimSpace(*dto.QRCode) != "" {
		qrCode = strings.TrimSpace(*dto.QRCode)
	}

	now := time.Now().UTC()
	record := &assetDatamodel.Asset{
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		QRCode:      qrCode,
		Status:      string(status),
		Location:    dto.Location,
		Category:    dto.Category,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrDuplicateQRCode
		}
		return nil, internal.NewInternalError("failed to create asset", err)
	}

	s.logger.InfoContext(ctx, "asset created", "asset_id", record.ID, "qr_code", record.QRCode, "user_id", actor.ID)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionCreate, events.EntityAsset, actor.ID, record.ID,
		map[string]interface{}{"name": record.Name, "qrCode": record.QRCode},
	))

	return s.Get(ctx, record.ID)
}

// Update applies a merge-patch. A blank name or qrCode counts as absent.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, dto UpdateAssetDTO) (*Asset, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get asset", err)
	}
	if existing == nil {
		return nil, internal.ErrAssetNotFound
	}

	updates := map[string]interface{}{}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) != "" {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.QRCode != nil && strings.TrimSpace(*dto.QRCode) != "" {
		updates["qr_code"] = strings.TrimSpace(*dto.QRCode)
	}
	if dto.Status != nil {
		status, ok := ParseStatus(*dto.Status)
		if !ok {
			return nil, invalidStatus()
		}
		updates["status"] = string(status)
	}
	if dto.Location != nil {
		updates["location"] = *dto.Location
	}
	if dto.Category != nil {
		updates["category"] = *dto.Category
	}

	changed := make([]string, 0, len(updates))
	for column := range updates {
		changed = append(changed, column)
	}
	updates["updated_at"] = time.Now().UTC()

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrDuplicateQRCode
		}
		return nil, internal.NewInternalError("failed to update asset", err)
	}

	s.logger.InfoContext(ctx, "asset updated", "asset_id", id, "user_id", actor.ID, "fields", changed)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionUpdate, events.EntityAsset, actor.ID, id,
		map[string]interface{}{"fields": changed},
	))

	return s.Get(ctx, id)
}

// Delete removes the asset. Tickets that referenced it keep existing with no asset.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrAssetNotFound
		}
		return internal.NewInternalError("failed to delete asset", err)
	}

	s.logger.InfoContext(ctx, "asset deleted", "asset_id", id, "user_id", actor.ID)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionDelete, events.EntityAsset, actor.ID, id, nil,
	))
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list categories", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func invalidStatus() error {
	return internal.NewValidationFieldError("status", "status must be one of: Available, InUse, Maintenance, Retired", internal.ErrCodeInvalidStatus)
}
