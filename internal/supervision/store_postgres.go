package supervision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "thesisflow/pkg/domain"
	"thesisflow/pkg/platform/sentinel"
	txcontext "thesisflow/pkg/platform/tx"
)

// PostgresStore persists requests in the supervision_requests table.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const requestColumns = `id, thesis_id, requester_id, receiver_id, request_type, status, message, window_start, window_end, created_at, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, r *Request) error {
	var windowStart, windowEnd any
	if r.Window != nil {
		windowStart = r.Window.Start
		windowEnd = r.Window.End
	}
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO supervision_requests (`+requestColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(r.ID), uuid.UUID(r.ThesisID), uuid.UUID(r.Requester), uuid.UUID(r.Receiver),
		string(r.Type), string(r.Status), r.Message, windowStart, windowEnd, r.CreatedAt, r.ResolvedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return sentinel.ErrConflict
			case "23503":
				// thesis foreign key
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*Request, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM supervision_requests WHERE id = $1`, uuid.UUID(requestID))
	return scanRequest(row)
}

// Execute runs validate and mutate under SELECT ... FOR UPDATE so
// concurrent responses to the same request serialize on its row.
func (s *PostgresStore) Execute(ctx context.Context, requestID id.RequestID, validate func(*Request) error, mutate func(*Request)) (*Request, error) {
	var result *Request
	run := func(conn dbConn) error {
		row := conn.QueryRowContext(ctx,
			`SELECT `+requestColumns+` FROM supervision_requests WHERE id = $1 FOR UPDATE`, uuid.UUID(requestID))
		r, err := scanRequest(row)
		if err != nil {
			return err
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)
		_, err = conn.ExecContext(ctx,
			`UPDATE supervision_requests SET status = $2, message = $3, resolved_at = $4 WHERE id = $1`,
			uuid.UUID(r.ID), string(r.Status), r.Message, r.ResolvedAt,
		)
		if err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		result = r
		return nil
	}

	if tx, ok := txcontext.From(ctx); ok {
		if err := run(tx); err != nil {
			return nil, err
		}
		return result, nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin request tx: %w", err)
	}
	if err := run(sqlTx); err != nil {
		_ = sqlTx.Rollback()
		return nil, err
	}
	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit request tx: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) DeleteByThesis(ctx context.Context, thesisID id.ThesisID) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`DELETE FROM supervision_requests WHERE thesis_id = $1`, uuid.UUID(thesisID))
	if err != nil {
		return fmt.Errorf("delete requests by thesis: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByParticipant(ctx context.Context, userID id.UserID) ([]*Request, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM supervision_requests WHERE requester_id = $1 OR receiver_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(userID))
}

func (s *PostgresStore) ListByReceiver(ctx context.Context, receiver id.UserID) ([]*Request, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM supervision_requests WHERE receiver_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(receiver))
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requester id.UserID) ([]*Request, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM supervision_requests WHERE requester_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(requester))
}

func (s *PostgresStore) ListByThesis(ctx context.Context, thesisID id.ThesisID) ([]*Request, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM supervision_requests WHERE thesis_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(thesisID))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Request, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var (
		r           Request
		requestID   uuid.UUID
		thesisID    uuid.UUID
		requesterID uuid.UUID
		receiverID  uuid.UUID
		reqType     string
		status      string
		windowStart sql.NullTime
		windowEnd   sql.NullTime
		resolvedAt  sql.NullTime
	)
	err := row.Scan(&requestID, &thesisID, &requesterID, &receiverID, &reqType, &status,
		&r.Message, &windowStart, &windowEnd, &r.CreatedAt, &resolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan request: %w", err)
	}
	r.ID = id.RequestID(requestID)
	r.ThesisID = id.ThesisID(thesisID)
	r.Requester = id.UserID(requesterID)
	r.Receiver = id.UserID(receiverID)
	r.Type = RequestType(reqType)
	r.Status = RequestStatus(status)
	if windowStart.Valid && windowEnd.Valid {
		r.Window = &Window{Start: windowStart.Time, End: windowEnd.Time}
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		r.ResolvedAt = &t
	}
	return &r, nil
}
