package chatbot

import (
	"context"

	"github.com/frahmantamala/labtrack/internal/auth"
	ticketDatamodel "github.com/frahmantamala/labtrack/internal/core/datamodel/ticket"
)

type QueryType string

const (
	QueryCountAssets  QueryType = "count_assets"
	QueryCountTickets QueryType = "count_tickets"
	QueryListAssets   QueryType = "list_assets"
	QueryTicketStatus QueryType = "ticket_status"
	QueryNotFound     QueryType = "not_found"
	QueryUnknown      QueryType = "unknown"
)

// MaxQueryLength is measured in characters after sanitising.
const MaxQueryLength = 500

// AvailableAssetsLimit caps the names listed for "available assets".
const AvailableAssetsLimit = 5

type QueryDTO struct {
	Query string `json:"query"`
}

type Response struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	QueryType QueryType   `json:"queryType"`
}

type HelpResponse struct {
	Message             string   `json:"message"`
	ExampleQueries      []string `json:"exampleQueries"`
	SupportedOperations []string `json:"supportedOperations"`
}

type ServiceAPI interface {
	Query(ctx context.Context, actor *auth.User, raw string) (*Response, error)
	Help() HelpResponse
}

type RepositoryAPI interface {
	CountAssets(ctx context.Context) (int64, error)
	CountTickets(ctx context.Context) (int64, error)
	// CountTicketsFor counts tickets the user created or is assigned to.
	CountTicketsFor(ctx context.Context, userID int64) (int64, error)
	AvailableAssetNames(ctx context.Context, limit int) ([]string, error)
	// GetTicket returns nil, nil when the ticket does not exist.
	GetTicket(ctx context.Context, id int64) (*ticketDatamodel.Ticket, error)
}
