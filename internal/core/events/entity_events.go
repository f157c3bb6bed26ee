package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ActionRegister = "Register"
	ActionLogin    = "Login"
	ActionCreate   = "Create"
	ActionUpdate   = "Update"
	ActionDelete   = "Delete"
)

const (
	EntityUser    = "User"
	EntityAsset   = "Asset"
	EntityTicket  = "Ticket"
	EntityComment = "Comment"
)

// EntityEvent announces that an actor changed (or authenticated as) an entity.
type EntityEvent struct {
	BaseEvent
	ActorID    *int64 `json:"actor_id,omitempty"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   *int64 `json:"entity_id,omitempty"`
}

// EventTypeFor builds the bus topic, e.g. "ticket.update".
func EventTypeFor(entityType, action string) string {
	return strings.ToLower(entityType) + "." + strings.ToLower(action)
}

// NewEntityEvent creates an event. Zero ids are treated as absent.
func NewEntityEvent(action, entityType string, actorID, entityID int64, details map[string]interface{}) *EntityEvent {
	if details == nil {
		details = map[string]interface{}{}
	}
	return &EntityEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeFor(entityType, action),
			Timestamp: time.Now().UTC(),
			Data:      details,
		},
		ActorID:    optionalID(actorID),
		Action:     action,
		EntityType: entityType,
		EntityID:   optionalID(entityID),
	}
}

// AuditedEventTypes lists every topic that ends up in the audit trail.
func AuditedEventTypes() []string {
	return []string{
		EventTypeFor(EntityUser, ActionRegister),
		EventTypeFor(EntityUser, ActionLogin),
		EventTypeFor(EntityAsset, ActionCreate),
		EventTypeFor(EntityAsset, ActionUpdate),
		EventTypeFor(EntityAsset, ActionDelete),
		EventTypeFor(EntityTicket, ActionCreate),
		EventTypeFor(EntityTicket, ActionUpdate),
		EventTypeFor(EntityTicket, ActionDelete),
		EventTypeFor(EntityComment, ActionCreate),
		EventTypeFor(EntityComment, ActionDelete),
	}
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// Emit publishes ev synchronously. The change it describes is already
// committed, so a handler failure is logged and not returned.
func Emit(ctx context.Context, pub Publisher, logger *slog.Logger, ev *EntityEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishSync(ctx, ev); err != nil {
		logger.WarnContext(ctx, "audit trail write failed",
			"event_type", ev.EventType(),
			"event_id", ev.EventID(),
			"error", err)
	}
}
