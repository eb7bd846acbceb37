// Package postgres implements the audit store with the transactional
// outbox pattern. Events are written to the outbox table inside the
// caller's transaction and published to Kafka by the outbox worker, so
// an audit record exists iff the state change it describes committed.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "thesisflow/pkg/domain"
	audit "thesisflow/pkg/platform/audit"
	txcontext "thesisflow/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

var _ audit.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON structure stored in the outbox and published to
// Kafka. Field names are stable; the consumer deserializes by name.
type payload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	p := payload{
		ID:        eventID.String(),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    string(event.Action),
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	}
	if !event.ActorID.IsNil() {
		p.ActorID = event.ActorID.String()
	}

	payloadBytes, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = s.execer(ctx).ExecContext(ctx,
		`INSERT INTO audit_outbox (event_id, topic_key, payload, created_at) VALUES ($1, $2, $3, $4)`,
		eventID, event.Subject, payloadBytes, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

// ListBySubject returns events for one entity, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT payload FROM audit_outbox WHERE topic_key = $1 ORDER BY id ASC`,
		subject,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit payload: %w", err)
		}
		event, err := decode(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// PendingBatch returns up to limit unpublished outbox rows, oldest first.
// Used by the outbox worker.
func (s *Store) PendingBatch(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic_key, payload FROM audit_outbox WHERE published_at IS NULL ORDER BY id ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query outbox batch: %w", err)
	}
	defer rows.Close()

	var batch []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.Key, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	return batch, rows.Err()
}

// MarkPublished stamps outbox rows after a successful Kafka produce.
func (s *Store) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = $1 WHERE id = ANY($2)`,
		at, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// OutboxRow is one unpublished audit event awaiting Kafka delivery.
type OutboxRow struct {
	ID      int64
	Key     string
	Payload []byte
}

func decode(raw []byte) (audit.Event, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	event := audit.Event{
		Subject:   p.Subject,
		Action:    audit.Action(p.Action),
		Decision:  p.Decision,
		Reason:    p.Reason,
		RequestID: p.RequestID,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if p.ActorID != "" {
		actorID, err := id.ParseUserID(p.ActorID)
		if err != nil {
			return audit.Event{}, fmt.Errorf("decode audit actor: %w", err)
		}
		event.ActorID = actorID
	}
	return event, nil
}
