package user

import (
	"context"
	"time"

	"github.com/frahmantamala/labtrack/internal/auth"
	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
)

// Profile is the public view of a user account. The password hash never
// leaves the repository layer.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	List(ctx context.Context) ([]userDatamodel.User, error)
}

func FromDataModel(u *userDatamodel.User) *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      auth.Role(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
