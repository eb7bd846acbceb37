package identity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "thesisflow/pkg/domain"
	txcontext "thesisflow/pkg/platform/tx"
)

// PostgresOracle resolves roles and subject areas from the user_roles
// and tutor_subject_areas tables.
type PostgresOracle struct {
	db *sql.DB
}

var _ Oracle = (*PostgresOracle)(nil)

func NewPostgres(db *sql.DB) *PostgresOracle {
	return &PostgresOracle{db: db}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (o *PostgresOracle) querier(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return o.db
}

func (o *PostgresOracle) HasRole(ctx context.Context, userID id.UserID, role Role) (bool, error) {
	var exists bool
	err := o.querier(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		uuid.UUID(userID), string(role),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query role: %w", err)
	}
	return exists, nil
}

func (o *PostgresOracle) SubjectAreasOf(ctx context.Context, userID id.UserID) ([]id.SubjectAreaID, error) {
	rows, err := o.querier(ctx).QueryContext(ctx,
		`SELECT subject_area_id FROM tutor_subject_areas WHERE user_id = $1`,
		uuid.UUID(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("query subject areas: %w", err)
	}
	defer rows.Close()

	var areas []id.SubjectAreaID
	for rows.Next() {
		var area uuid.UUID
		if err := rows.Scan(&area); err != nil {
			return nil, fmt.Errorf("scan subject area: %w", err)
		}
		areas = append(areas, id.SubjectAreaID(area))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subject areas: %w", err)
	}
	return areas, nil
}

// GrantRole inserts a role membership. Used by seeding and admin tooling.
func (o *PostgresOracle) GrantRole(ctx context.Context, userID id.UserID, role Role) error {
	_, err := o.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		uuid.UUID(userID), string(role),
	)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

// AssociateSubjectArea inserts a tutor expertise record.
func (o *PostgresOracle) AssociateSubjectArea(ctx context.Context, userID id.UserID, area id.SubjectAreaID) error {
	_, err := o.db.ExecContext(ctx,
		`INSERT INTO tutor_subject_areas (user_id, subject_area_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		uuid.UUID(userID), uuid.UUID(area),
	)
	if err != nil {
		return fmt.Errorf("associate subject area: %w", err)
	}
	return nil
}
