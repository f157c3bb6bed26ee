package asset

import (
	"context"
	"strings"
	"time"

	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	assetDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/asset"
	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable   Status = "Available"
	StatusInUse       Status = "InUse"
	StatusMaintenance Status = "Maintenance"
	StatusRetired     Status = "Retired"
)

var statuses = []Status{StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired}

// ParseStatus matches a status name case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// QRCodePrefix prefixes generated QR codes.
const QRCodePrefix = "ASSET-"

// NewQRCode returns "ASSET-" followed by 8 random upper-case hex characters.
func NewQRCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return QRCodePrefix + strings.ToUpper(raw[:8])
}

type Asset struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	QRCode      string    `json:"qrCode"`
	Status      Status    `json:"status"`
	Location    *string   `json:"location"`
	Category    *string   `json:"category"`
	CreatedBy   int64     `json:"createdBy"`
	CreatorName *string   `json:"creatorName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows an asset listing. Zero values do not filter.
type Filter struct {
	Status   Status
	Category string
	Search   string
}

type ServiceAPI interface {
	List(ctx context.Context, filter Filter, page pagination.Params) (pagination.Page[Asset], error)
	Get(ctx context.Context, id int64) (*Asset, error)
	Create(ctx context.Context, actor *auth.User, dto CreateAssetDTO) (*Asset, error)
	Update(ctx context.Context, actor *auth.User, id int64, dto UpdateAssetDTO) (*Asset, error)
	Delete(ctx context.Context, actor *auth.User, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter, page pagination.Params) ([]assetDatamodel.Asset, int64, error)
	// GetByID returns nil, nil when the asset does not exist.
	GetByID(ctx context.Context, id int64) (*assetDatamodel.Asset, error)
	Create(ctx context.Context, a *assetDatamodel.Asset) error
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	// Delete detaches the asset from its tickets and removes it in one transaction.
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

func FromDataModel(a *assetDatamodel.Asset) *Asset {
	out := &Asset{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		QRCode:      a.QRCode,
		Status:      Status(a.Status),
		Location:    a.Location,
		Category:    a.Category,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Creator != nil {
		name := a.Creator.Username
		out.CreatorName = &name
	}
	return out
}
