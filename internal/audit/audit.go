package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/frahmantamala/labtrack/internal/core/events"
	"github.com/jmoiron/sqlx"
	"gorm.io/datatypes"
)

// Entry is one row of the write-only audit trail.
type Entry struct {
	UserID     *int64
	Action     string
	EntityType string
	EntityID   *int64
	Details    map[string]interface{}
	Timestamp  time.Time
}

// Recorder appends entries to audit_logs and reads them back for operators.
// It shares the connection pool with gorm but goes through sqlx so a failed
// audit insert never touches the ORM session of the business operation.
type Recorder struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

func NewRecorder(db *sqlx.DB, logger *slog.Logger) *Recorder {
	var format sq.PlaceholderFormat = sq.Question
	switch db.DriverName() {
	case "pgx", "pgx/v5", "postgres":
		format = sq.Dollar
	}
	return &Recorder{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		logger:  logger,
	}
}

func (r *Recorder) Record(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	var details datatypes.JSON
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = datatypes.JSON(raw)
	}

	query, args, err := r.builder.
		Insert("audit_logs").
		Columns("user_id", "action", "entity_type", "entity_id", "details", "timestamp").
		Values(e.UserID, e.Action, e.EntityType, e.EntityID, details, e.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	r.logger.Debug("audit entry recorded",
		"action", e.Action,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID)
	return nil
}

// HandleEvent turns an EntityEvent published on the bus into an audit row.
func (r *Recorder) HandleEvent(ctx context.Context, event events.Event) error {
	ev, ok := event.(*events.EntityEvent)
	if !ok {
		r.logger.Warn("audit recorder received unexpected event", "event_type", event.EventType())
		return nil
	}

	return r.Record(ctx, Entry{
		UserID:     ev.ActorID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Details:    ev.Data,
		Timestamp:  ev.Timestamp,
	})
}

// Subscribe registers the recorder for every audited event type.
func (r *Recorder) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(events.AuditedEventTypes(), r.HandleEvent)
}

// Row is an audit_logs row as read back for inspection.
type Row struct {
	ID         int64          `db:"id" json:"id"`
	UserID     *int64         `db:"user_id" json:"userId,omitempty"`
	Action     string         `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entityType"`
	EntityID   *int64         `db:"entity_id" json:"entityId,omitempty"`
	Details    datatypes.JSON `db:"details" json:"details,omitempty"`
	Timestamp  time.Time      `db:"timestamp" json:"timestamp"`
}

type Filter struct {
	EntityType string
	EntityID   int64
	Limit      uint64
}

// Recent returns the newest entries first.
func (r *Recorder) Recent(ctx context.Context, f Filter) ([]Row, error) {
	if f.Limit == 0 {
		f.Limit = 50
	}

	q := r.builder.
		Select("id", "user_id", "action", "entity_type", "entity_id", "COALESCE(details, '{}') AS details", "timestamp").
		From("audit_logs").
		OrderBy("timestamp DESC", "id DESC").
		Limit(f.Limit)
	if f.EntityType != "" {
		q = q.Where(sq.Eq{"entity_type": f.EntityType})
	}
	if f.EntityID > 0 {
		q = q.Where(sq.Eq{"entity_id": f.EntityID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	rows := []Row{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	return rows, nil
}
