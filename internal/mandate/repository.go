package mandate

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	ListByUser(ctx context.Context, userID uint) ([]Mandate, error)
	Insert(ctx context.Context, userID uint, gatewayMandateID, label string, created time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// ListByUser returns every mandate saved for userID. An anonymous caller
// (userID 0) gets an empty list without touching the database.
func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Mandate, error) {
	if userID == 0 {
		return []Mandate{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, label, mandate_id, created
		FROM gocardless_mandate
		WHERE user_id = $1
		ORDER BY created ASC, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mandates := []Mandate{}
	for rows.Next() {
		var m Mandate
		if err := rows.Scan(&m.ID, &m.UserID, &m.Label, &m.MandateID, &m.Created); err != nil {
			return nil, err
		}
		mandates = append(mandates, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mandates, nil
}

// Insert saves a freshly authorized mandate. Repeated calls with the same
// gateway mandate id create duplicate rows; there is no unique index on
// mandate_id.
func (r *repository) Insert(ctx context.Context, userID uint, gatewayMandateID, label string, created time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gocardless_mandate (user_id, label, mandate_id, created)
		VALUES ($1, $2, $3, $4)
	`, userID, label, gatewayMandateID, created)
	return err
}
