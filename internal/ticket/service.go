package ticket

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
	"github.com/frahmantamala/labtrack/internal/core/common/pagination"
	"github.com/frahmantamala/labtrack/internal/core/common/validation"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
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

// List returns a page of tickets. Non-admins only ever see tickets they
// created or are assigned to.
func (s *Service) List(ctx context.Context, actor *auth.User, filter Filter, page pagination.Params) (pagination.Page[Ticket], error) {
	filter.OwnerID = nil
	if ownerID, restricted := s.policy.TicketListScope(actor); restricted {
		filter.OwnerID = &ownerID
	}

	records, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return pagination.Page[Ticket]{}, internal.NewInternalError("failed to list tickets", err)
	}

	items := make([]Ticket, 0, len(records))
	for i := range records {
		items = append(items, *FromDataModel(&records[i]))
	}
	return pagination.NewPage(items, total, page), nil
}

// Get returns a ticket with its comments, oldest first.
func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Ticket, error) {
	record, err := s.load(ctx, id, true)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(auth.OpTicketRead, actor, auth.TicketResource(record.CreatedBy, record.AssignedTo)); err != nil {
		s.logger.WarnContext(ctx, "ticket read denied", "ticket_id", id, "user_id", actor.ID, "role", actor.Role)
		return nil, err
	}
	return FromDataModel(record), nil
}

// Create opens a new ticket. The status always starts at Open.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto CreateTicketDTO) (*Ticket, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(auth.OpTicketCreate, actor, auth.Resource{}); err != nil {
		return nil, err
	}

	priority := DefaultPriority
	if strings.TrimSpace(dto.Priority) != "" {
		parsed, ok := ParsePriority(dto.Priority)
		if !ok {
			return nil, invalidPriority()
		}
		priority = parsed
	}

	if dto.AssetID != nil {
		if err := s.ensureAsset(ctx, *dto.AssetID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	record := &ticketDatamodel.Ticket{
		Title:       strings.TrimSpace(dto.Title),
		Description: dto.Description,
		Status:      string(InitialStatus),
		Priority:    string(priority),
		AssetID:     dto.AssetID,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, internal.NewInternalError("failed to create ticket", err)
	}

	s.logger.InfoContext(ctx, "ticket created", "ticket_id", record.ID, "user_id", actor.ID, "priority", record.Priority)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionCreate, events.EntityTicket, actor.ID, record.ID,
		map[string]interface{}{"title": record.Title, "priority": record.Priority},
	))

	created, err := s.load(ctx, record.ID, true)
	if err != nil {
		return nil, err
	}
	return FromDataModel(created), nil
}

// Update applies a merge-patch. Either every supplied field is written or,
// when any check fails, nothing is.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, dto UpdateTicketDTO) (*Ticket, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, id, false)
	if err != nil {
		return nil, err
	}

	res := auth.TicketResource(current.CreatedBy, current.AssignedTo)
	if err := s.policy.Authorize(auth.OpTicketUpdate, actor, res); err != nil {
		s.logger.WarnContext(ctx, "ticket update denied", "ticket_id", id, "user_id", actor.ID, "role", actor.Role)
		return nil, err
	}
	if dto.AssignedTo != nil {
		if err := s.policy.Authorize(auth.OpTicketAssign, actor, res); err != nil {
			s.logger.WarnContext(ctx, "ticket assignment denied", "ticket_id", id, "user_id", actor.ID, "role", actor.Role)
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	details := map[string]interface{}{}

	if dto.Status != nil {
		next, ok := ParseStatus(*dto.Status)
		if !ok {
			return nil, internal.NewValidationFieldError("status", "status must be one of: Open, InProgress, Resolved, Closed", internal.ErrCodeInvalidStatus)
		}
		from := Status(current.Status)
		if !CanTransition(from, next) {
			s.logger.InfoContext(ctx, "ticket transition rejected", "ticket_id", id, "from", from, "to", next)
			return nil, internal.ErrInvalidTransition.WithMessage("Cannot transition ticket from " + string(from) + " to " + string(next))
		}
		updates["status"] = string(next)
		details["fromStatus"] = string(from)
		details["toStatus"] = string(next)
	}
	if dto.Priority != nil {
		priority, ok := ParsePriority(*dto.Priority)
		if !ok {
			return nil, invalidPriority()
		}
		updates["priority"] = string(priority)
	}
	if dto.Title != nil && strings.TrimSpace(*dto.Title) != "" {
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.AssignedTo != nil {
		exists, err := s.repo.UserExists(ctx, *dto.AssignedTo)
		if err != nil {
			return nil, internal.NewInternalError("failed to check assignee", err)
		}
		if !exists {
			return nil, internal.NewValidationFieldError("assignedTo", "assignee does not exist", internal.ErrCodeUnknownAssignee)
		}
		updates["assigned_to"] = *dto.AssignedTo
	}

	fields := make([]string, 0, len(updates))
	for column := range updates {
		fields = append(fields, column)
	}
	details["fields"] = fields
	updates["updated_at"] = nextUpdatedAt(current.UpdatedAt)

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, internal.NewInternalError("failed to update ticket", err)
	}

	s.logger.InfoContext(ctx, "ticket updated", "ticket_id", id, "user_id", actor.ID, "fields", fields)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionUpdate, events.EntityTicket, actor.ID, id, details,
	))

	updated, err := s.load(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return FromDataModel(updated), nil
}

// Delete removes a ticket together with its comments.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) error {
	if err := s.policy.Authorize(auth.OpTicketDelete, actor, auth.Resource{}); err != nil {
		return err
	}
	if _, err := s.load(ctx, id, false); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete ticket", err)
	}

	s.logger.InfoContext(ctx, "ticket deleted", "ticket_id", id, "user_id", actor.ID)
	events.Emit(ctx, s.publisher, s.logger, events.NewEntityEvent(
		events.ActionDelete, events.EntityTicket, actor.ID, id, nil,
	))
	return nil
}

func (s *Service) load(ctx context.Context, id int64, withComments bool) (*ticketDatamodel.Ticket, error) {
	record, err := s.repo.GetByID(ctx, id, withComments)
	if err != nil {
		return nil, internal.NewInternalError("failed to get ticket", err)
	}
	if record == nil {
		return nil, internal.ErrTicketNotFound
	}
	return record, nil
}

func (s *Service) ensureAsset(ctx context.Context, assetID int64) error {
	exists, err := s.repo.AssetExists(ctx, assetID)
	if err != nil {
		return internal.NewInternalError("failed to check asset", err)
	}
	if !exists {
		return internal.NewValidationFieldError("assetId", "asset does not exist", internal.ErrCodeUnknownAsset)
	}
	return nil
}

func invalidPriority() error {
	return internal.NewValidationFieldError("priority", "priority must be one of: Low, Medium, High, Critical", internal.ErrCodeInvalidPriority)
}

// nextUpdatedAt returns the current time at the precision the stores keep,
// bumped past prev so successive updates are strictly ordered.
func nextUpdatedAt(prev time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}
