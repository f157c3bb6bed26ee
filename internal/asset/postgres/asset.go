package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/labtrack/internal/asset"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
	"gorm.io/gorm"
)

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// AssetRepository implements asset.RepositoryAPI using GORM
type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) asset.RepositoryAPI {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) filtered(ctx context.Context, f asset.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&assetDatamodel.Asset{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\' OR LOWER(qr_code) LIKE ? ESCAPE '\')`, like, like, like)
	}
	return q
}

// List returns one page, newest first with ties in insertion order, plus the
// total number of matches.
func (r *AssetRepository) List(ctx context.Context, f asset.Filter, page pagination.Params) ([]assetDatamodel.Asset, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []assetDatamodel.Asset
	err := r.filtered(ctx, f).
		Preload("Creator").
		Order("created_at DESC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&assets).Error
	return assets, total, err
}

func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*assetDatamodel.Asset, error) {
	var a assetDatamodel.Asset
	err := r.db.WithContext(ctx).Preload("Creator").Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) Create(ctx context.Context, a *assetDatamodel.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssetRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&assetDatamodel.Asset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *AssetRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ticketDatamodel.Ticket{}).
			Where("asset_id = ?", id).
			UpdateColumn("asset_id", nil).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&assetDatamodel.Asset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Categories returns the distinct non-empty categories in alphabetical order.
func (r *AssetRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&assetDatamodel.Asset{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}
