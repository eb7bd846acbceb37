package offer

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

// PostgresStore persists offers and applications in the thesis_offers
// and offer_applications tables.
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

const offerColumns = `id, tutor_id, title, description, subject_area_id, status, max_students, expires_at, created_at, updated_at`

const applicationColumns = `id, offer_id, student_id, status, message, created_at, resolved_at`

func (s *PostgresStore) CreateOffer(ctx context.Context, o *ThesisOffer) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO thesis_offers (`+offerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(o.ID), uuid.UUID(o.Tutor), o.Title, o.Description, uuid.UUID(o.SubjectArea),
		string(o.Status), o.MaxStudents, o.ExpiresAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindOfferByID(ctx context.Context, offerID id.OfferID) (*ThesisOffer, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM thesis_offers WHERE id = $1`, uuid.UUID(offerID))
	return scanOffer(row)
}

// ExecuteOffer runs validate and mutate under SELECT ... FOR UPDATE so
// concurrent status changes serialize on the offer row.
func (s *PostgresStore) ExecuteOffer(ctx context.Context, offerID id.OfferID, validate func(*ThesisOffer) error, mutate func(*ThesisOffer)) (*ThesisOffer, error) {
	var result *ThesisOffer
	run := func(conn dbConn) error {
		row := conn.QueryRowContext(ctx,
			`SELECT `+offerColumns+` FROM thesis_offers WHERE id = $1 FOR UPDATE`, uuid.UUID(offerID))
		o, err := scanOffer(row)
		if err != nil {
			return err
		}
		if err := validate(o); err != nil {
			return err
		}
		mutate(o)
		_, err = conn.ExecContext(ctx,
			`UPDATE thesis_offers SET title = $2, description = $3, status = $4, max_students = $5, expires_at = $6, updated_at = $7 WHERE id = $1`,
			uuid.UUID(o.ID), o.Title, o.Description, string(o.Status), o.MaxStudents, o.ExpiresAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update offer: %w", err)
		}
		result = o
		return nil
	}
	if err := s.inTx(ctx, run); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) ListOffersByTutor(ctx context.Context, tutor id.UserID) ([]*ThesisOffer, error) {
	return s.listOffers(ctx,
		`SELECT `+offerColumns+` FROM thesis_offers WHERE tutor_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(tutor))
}

func (s *PostgresStore) ListOpenOffers(ctx context.Context, area *id.SubjectAreaID) ([]*ThesisOffer, error) {
	if area != nil {
		return s.listOffers(ctx,
			`SELECT `+offerColumns+` FROM thesis_offers WHERE status = 'OPEN' AND subject_area_id = $1 ORDER BY created_at DESC`,
			uuid.UUID(*area))
	}
	return s.listOffers(ctx,
		`SELECT `+offerColumns+` FROM thesis_offers WHERE status = 'OPEN' ORDER BY created_at DESC`)
}

func (s *PostgresStore) CreateApplication(ctx context.Context, a *Application) error {
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO offer_applications (`+applicationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(a.ID), uuid.UUID(a.OfferID), uuid.UUID(a.Student),
		string(a.Status), a.Message, a.CreatedAt, a.ResolvedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return sentinel.ErrConflict
			case "23503":
				// offer foreign key
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindApplicationByID(ctx context.Context, appID id.ApplicationID) (*Application, error) {
	row := s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM offer_applications WHERE id = $1`, uuid.UUID(appID))
	return scanApplication(row)
}

func (s *PostgresStore) ExecuteApplication(ctx context.Context, appID id.ApplicationID, validate func(*Application) error, mutate func(*Application)) (*Application, error) {
	var result *Application
	run := func(conn dbConn) error {
		row := conn.QueryRowContext(ctx,
			`SELECT `+applicationColumns+` FROM offer_applications WHERE id = $1 FOR UPDATE`, uuid.UUID(appID))
		a, err := scanApplication(row)
		if err != nil {
			return err
		}
		if err := validate(a); err != nil {
			return err
		}
		mutate(a)
		_, err = conn.ExecContext(ctx,
			`UPDATE offer_applications SET status = $2, message = $3, resolved_at = $4 WHERE id = $1`,
			uuid.UUID(a.ID), string(a.Status), a.Message, a.ResolvedAt,
		)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		result = a
		return nil
	}
	if err := s.inTx(ctx, run); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) ListApplicationsByOffer(ctx context.Context, offerID id.OfferID) ([]*Application, error) {
	return s.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM offer_applications WHERE offer_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(offerID))
}

func (s *PostgresStore) ListApplicationsByStudent(ctx context.Context, student id.UserID) ([]*Application, error) {
	return s.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM offer_applications WHERE student_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(student))
}

// inTx reuses an ambient transaction when one is on the context,
// otherwise opens and commits its own.
func (s *PostgresStore) inTx(ctx context.Context, run func(dbConn) error) error {
	if tx, ok := txcontext.From(ctx); ok {
		return run(tx)
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin offer tx: %w", err)
	}
	if err := run(sqlTx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit offer tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) listOffers(ctx context.Context, query string, args ...any) ([]*ThesisOffer, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var out []*ThesisOffer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) listApplications(ctx context.Context, query string, args ...any) ([]*Application, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*ThesisOffer, error) {
	var (
		o           ThesisOffer
		offerID     uuid.UUID
		tutorID     uuid.UUID
		areaID      uuid.UUID
		status      string
		maxStudents sql.NullInt64
		expiresAt   sql.NullTime
	)
	err := row.Scan(&offerID, &tutorID, &o.Title, &o.Description, &areaID, &status,
		&maxStudents, &expiresAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan offer: %w", err)
	}
	o.ID = id.OfferID(offerID)
	o.Tutor = id.UserID(tutorID)
	o.SubjectArea = id.SubjectAreaID(areaID)
	o.Status = OfferStatus(status)
	if maxStudents.Valid {
		n := int(maxStudents.Int64)
		o.MaxStudents = &n
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		o.ExpiresAt = &t
	}
	return &o, nil
}

func scanApplication(row rowScanner) (*Application, error) {
	var (
		a          Application
		appID      uuid.UUID
		offerID    uuid.UUID
		studentID  uuid.UUID
		status     string
		resolvedAt sql.NullTime
	)
	err := row.Scan(&appID, &offerID, &studentID, &status, &a.Message, &a.CreatedAt, &resolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	a.ID = id.ApplicationID(appID)
	a.OfferID = id.OfferID(offerID)
	a.Student = id.UserID(studentID)
	a.Status = ApplicationStatus(status)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		a.ResolvedAt = &t
	}
	return &a, nil
}
