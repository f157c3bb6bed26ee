package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/user"
	"github.com/frahmantamala/labtrack/internal/core/events"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	publisher      events.Publisher
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		publisher:      publisher,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	dto.Email = strings.TrimSpace(dto.Email)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	role := RoleTechnician
	if strings.TrimSpace(dto.Role) != "" {
		parsed, ok := ParseRole(dto.Role)
		if !ok {
			return nil, internal.NewValidationFieldError("role", "role must be one of: Admin, Engineer, Technician", internal.ErrCodeInvalidRole)
		}
		role = parsed
	}

	exists, err := s.repo.ExistsByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	}
	if exists {
		return nil, internal.ErrDuplicateUsername
	}

	exists, err = s.repo.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if exists {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	record := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         string(role),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.NewConflictError("Username or email already exists", internal.ErrCodeDuplicateKey)
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	user := &User{ID: record.ID, Username: record.Username, Email: record.Email, Role: role}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)

	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionRegister, events.EntityUser, user.ID, user.ID,
		map[string]interface{}{"username": user.Username, "role": string(user.Role)},
	))

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if record == nil {
		s.logger.WarnContext(ctx, "login failed: unknown username", "username", dto.Username)
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(record.PasswordHash, dto.Password); err != nil {
		s.logger.WarnContext(ctx, "login failed: wrong password", "user_id", record.ID)
		return nil, internal.ErrInvalidCredentials
	}

	role, ok := ParseRole(record.Role)
	if !ok {
		return nil, internal.NewInternalError("stored user has an unknown role", nil)
	}

	user := &User{ID: record.ID, Username: record.Username, Email: record.Email, Role: role}
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)

	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionLogin, events.EntityUser, user.ID, user.ID, nil,
	))

	return s.issue(user)
}

// ValidateAccessToken validates access token and returns the actor it names.
func (s *Service) ValidateAccessToken(tokenString string) (*User, error) {
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.User(), nil
}

func (s *Service) issue(user *User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(user)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
	}, nil
}
