package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/auth"
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

// Query answers a free-text question. It never mutates anything.
func (s *Service) Query(ctx context.Context, actor *auth.User, raw string) (*Response, error) {
	query, err := Sanitize(raw)
	if err != nil {
		return nil, err
	}

	kind, ticketID := classify(query)
	s.logger.DebugContext(ctx, "chatbot query classified", "user_id", actor.ID, "query_type", kind)

	switch kind {
	case QueryCountAssets:
		return s.countAssets(ctx)
	case QueryCountTickets:
		return s.countTickets(ctx, actor)
	case QueryListAssets:
		return s.listAvailable(ctx)
	case QueryTicketStatus:
		return s.ticketStatus(ctx, ticketID)
	default:
		return &Response{Message: helpMessage, QueryType: QueryUnknown}, nil
	}
}

func (s *Service) countAssets(ctx context.Context) (*Response, error) {
	count, err := s.repo.CountAssets(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count assets", err)
	}
	return &Response{
		Message:   fmt.Sprintf("There are currently %d total assets in the system.", count),
		Data:      map[string]int64{"count": count},
		QueryType: QueryCountAssets,
	}, nil
}

// countTickets discloses the system total to everyone but only counts the
// actor's own tickets for non-admins.
func (s *Service) countTickets(ctx context.Context, actor *auth.User) (*Response, error) {
	total, err := s.repo.CountTickets(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count tickets", err)
	}

	if actor.IsAdmin() {
		return &Response{
			Message:   fmt.Sprintf("There are currently %d total tickets in the system.", total),
			Data:      map[string]int64{"count": total},
			QueryType: QueryCountTickets,
		}, nil
	}

	visible, err := s.repo.CountTicketsFor(ctx, actor.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count tickets", err)
	}
	return &Response{
		Message:   fmt.Sprintf("You have access to %d tickets (System Total: %d).", visible, total),
		Data:      map[string]int64{"count": visible, "total": total},
		QueryType: QueryCountTickets,
	}, nil
}

func (s *Service) listAvailable(ctx context.Context) (*Response, error) {
	names, err := s.repo.AvailableAssetNames(ctx, AvailableAssetsLimit)
	if err != nil {
		return nil, internal.NewInternalError("failed to list available assets", err)
	}
	if len(names) == 0 {
		return &Response{Message: "No assets are currently available.", Data: []string{}, QueryType: QueryListAssets}, nil
	}
	return &Response{
		Message:   "Here are some available assets: " + strings.Join(names, ", "),
		Data:      names,
		QueryType: QueryListAssets,
	}, nil
}

func (s *Service) ticketStatus(ctx context.Context, id int64) (*Response, error) {
	t, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get ticket", err)
	}
	if t == nil {
		return &Response{
			Message:   fmt.Sprintf("I couldn't find a ticket with ID #%d.", id),
			QueryType: QueryNotFound,
		}, nil
	}

	subject := fmt.Sprintf("Ticket #%d", t.ID)
	data := map[string]interface{}{"ticketId": t.ID, "status": t.Status, "priority": t.Priority}
	if t.Asset != nil {
		subject += " for " + t.Asset.Name
		data["assetName"] = t.Asset.Name
	}
	return &Response{
		Message:   fmt.Sprintf("%s is currently '%s' with '%s' priority.", subject, t.Status, t.Priority),
		Data:      data,
		QueryType: QueryTicketStatus,
	}, nil
}

func (s *Service) Help() HelpResponse {
	return HelpResponse{
		Message: "LabTrack Chatbot Help",
		ExampleQueries: []string{
			"How many assets are there?",
			"Count assets",
			"How many tickets do I have?",
			"Count tickets",
			"Show available assets",
			"What is available?",
			"What is the status of ticket #1?",
			"Ticket id 3",
		},
		SupportedOperations: []string{
			"Count assets",
			"Count tickets visible to you",
			"List available assets",
			"Look up a ticket's status and priority by id",
		},
	}
}
