package thesis

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

// PostgresStore persists theses in the theses table.
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

const thesisColumns = `id, title, description, status, billing_status, owner_id, tutor_id, second_supervisor_id, subject_area_id, document_ref, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, t *Thesis) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO theses (`+thesisColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(t.ID), t.Title, t.Description, string(t.Status), string(t.BillingStatus),
		uuid.UUID(t.Owner), userIDOrNil(t.Tutor), userIDOrNil(t.SecondSupervisor),
		subjectAreaOrNil(t.SubjectArea), nullString(t.DocumentRef), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert thesis: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, thesisID id.ThesisID) (*Thesis, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+thesisColumns+` FROM theses WHERE id = $1`, uuid.UUID(thesisID))
	return scanThesis(row)
}

// Execute runs validate and mutate under SELECT ... FOR UPDATE so
// concurrent accepts of competing requests serialize on the thesis row.
func (s *PostgresStore) Execute(ctx context.Context, thesisID id.ThesisID, validate func(*Thesis) error, mutate func(*Thesis)) (*Thesis, error) {
	var result *Thesis
	run := func(conn dbConn) error {
		row := conn.QueryRowContext(ctx,
			`SELECT `+thesisColumns+` FROM theses WHERE id = $1 FOR UPDATE`, uuid.UUID(thesisID))
		t, err := scanThesis(row)
		if err != nil {
			return err
		}
		if err := validate(t); err != nil {
			return err
		}
		mutate(t)
		_, err = conn.ExecContext(ctx,
			`UPDATE theses SET title = $2, description = $3, status = $4, billing_status = $5,
			 tutor_id = $6, second_supervisor_id = $7, subject_area_id = $8, document_ref = $9, updated_at = $10
			 WHERE id = $1`,
			uuid.UUID(t.ID), t.Title, t.Description, string(t.Status), string(t.BillingStatus),
			userIDOrNil(t.Tutor), userIDOrNil(t.SecondSupervisor),
			subjectAreaOrNil(t.SubjectArea), nullString(t.DocumentRef), t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update thesis: %w", err)
		}
		result = t
		return nil
	}

	// Reuse an ambient transaction when present; otherwise open one so
	// the row lock spans validate and mutate.
	if tx, ok := txcontext.From(ctx); ok {
		if err := run(tx); err != nil {
			return nil, err
		}
		return result, nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin thesis tx: %w", err)
	}
	if err := run(sqlTx); err != nil {
		_ = sqlTx.Rollback()
		return nil, err
	}
	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit thesis tx: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, thesisID id.ThesisID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM theses WHERE id = $1`, uuid.UUID(thesisID))
	if err != nil {
		return fmt.Errorf("delete thesis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete thesis rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.UserID) ([]*Thesis, error) {
	return s.list(ctx, `SELECT `+thesisColumns+` FROM theses WHERE owner_id = $1 ORDER BY created_at DESC`, uuid.UUID(owner))
}

func (s *PostgresStore) ListBySupervisor(ctx context.Context, tutor id.UserID) ([]*Thesis, error) {
	return s.list(ctx,
		`SELECT `+thesisColumns+` FROM theses WHERE tutor_id = $1 OR second_supervisor_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(tutor))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Thesis, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list theses: %w", err)
	}
	defer rows.Close()

	var out []*Thesis
	for rows.Next() {
		t, err := scanThesis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThesis(row rowScanner) (*Thesis, error) {
	var (
		t           Thesis
		thesisID    uuid.UUID
		status      string
		billing     string
		ownerID     uuid.UUID
		tutorID     uuid.NullUUID
		secondID    uuid.NullUUID
		subjectID   uuid.NullUUID
		documentRef sql.NullString
	)
	err := row.Scan(&thesisID, &t.Title, &t.Description, &status, &billing,
		&ownerID, &tutorID, &secondID, &subjectID, &documentRef, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan thesis: %w", err)
	}
	t.ID = id.ThesisID(thesisID)
	t.Status = Status(status)
	t.BillingStatus = BillingStatus(billing)
	t.Owner = id.UserID(ownerID)
	if tutorID.Valid {
		tutor := id.UserID(tutorID.UUID)
		t.Tutor = &tutor
	}
	if secondID.Valid {
		second := id.UserID(secondID.UUID)
		t.SecondSupervisor = &second
	}
	if subjectID.Valid {
		area := id.SubjectAreaID(subjectID.UUID)
		t.SubjectArea = &area
	}
	if documentRef.Valid {
		t.DocumentRef = documentRef.String
	}
	return &t, nil
}

func userIDOrNil(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return uuid.UUID(*u)
}

func subjectAreaOrNil(a *id.SubjectAreaID) any {
	if a == nil {
		return nil
	}
	return uuid.UUID(*a)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
