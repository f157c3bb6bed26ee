package auth

import (
	"context"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleEngineer   Role = "Engineer"
	RoleTechnician Role = "Technician"
)

var roles = []Role{RoleAdmin, RoleEngineer, RoleTechnician}

// ParseRole matches a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// User is the authenticated actor decoded from a bearer token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error)
	Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	ValidateAccessToken(tokenString string) (*User, error)
}

type RepositoryAPI interface {
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(u *User) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
