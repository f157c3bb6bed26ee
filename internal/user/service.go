package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/labtrack/internal"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user by id", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// List returns every account ordered by username.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}

	profiles := make([]Profile, 0, len(records))
	for i := range records {
		profiles = append(profiles, *FromDataModel(&records[i]))
	}
	return profiles, nil
}
