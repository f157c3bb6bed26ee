package comment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/core/common/validation"
	commentDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/comment"
	"github.com/frahmantamala/labtrack/internal/core/events"
)

type Service struct {
	repo      RepositoryAPI
	policy    *auth.Policy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
	}
}

// Create appends a comment to a ticket the actor can see.
func (s *Service) Create(ctx context.Context, actor *auth.User, ticketID int64, dto CreateCommentDTO) (*Comment, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	t, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get ticket", err)
	}
	if t == nil {
		return nil, internal.ErrTicketNotFound
	}

	if err := s.policy.Authorize(auth.OpCommentCreate, actor, auth.TicketResource(t.CreatedBy, t.AssignedTo)); err != nil {
		s.logger.WarnContext(ctx, "comment denied", "ticket_id", ticketID, "user_id", actor.ID)
		return nil, err
	}

	record := &commentDatamodel.Comment{
		TicketID:  ticketID,
		UserID:    actor.ID,
		Content:   strings.TrimSpace(dto.Content),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, internal.NewInternalError("failed to create comment", err)
	}

	s.logger.InfoContext(ctx, "comment created", "comment_id", record.ID, "ticket_id", ticketID, "user_id", actor.ID)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionCreate, events.EntityComment, actor.ID, record.ID,
		map[string]interface{}{"ticketId": ticketID},
	))

	created, err := s.repo.GetByID(ctx, record.ID)
	if err != nil || created == nil {
		return FromDataModel(record), nil
	}
	return FromDataModel(created), nil
}

// Delete removes a comment of the given ticket. Only its author or an admin may.
func (s *Service) Delete(ctx context.Context, actor *auth.User, ticketID, commentID int64) error {
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return internal.NewInternalError("failed to get comment", err)
	}
	if c == nil || c.TicketID != ticketID {
		return internal.ErrCommentNotFound
	}

	if err := s.policy.Authorize(auth.OpCommentDelete, actor, auth.CommentResource(c.UserID)); err != nil {
		s.logger.WarnContext(ctx, "comment delete denied", "comment_id", commentID, "user_id", actor.ID)
		return err
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		return internal.NewInternalError("failed to delete comment", err)
	}

	s.logger.InfoContext(ctx, "comment deleted", "comment_id", commentID, "ticket_id", ticketID, "user_id", actor.ID)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionDelete, events.EntityComment, actor.ID, commentID,
		map[string]interface{}{"ticketId": ticketID},
	))
	return nil
}
