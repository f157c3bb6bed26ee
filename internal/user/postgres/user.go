package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"github.com/frahmantamala/labtrack/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) user.RepositoryAPI {
	return &Repository{db: db}
}

// GetByID returns nil, nil when the user does not exist.
func (r *Repository) GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context) ([]userDatamodel.User, error) {
	var users []userDatamodel.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}
