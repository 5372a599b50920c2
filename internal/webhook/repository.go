package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	// SaveEvent persists one event. A redelivered event id is an idempotent
	// success: (0, true, nil).
	SaveEvent(ctx context.Context, eventID, resourceType, action string, payload json.RawMessage) (id int64, isDuplicate bool, err error)

	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveEvent(
	ctx context.Context,
	eventID string,
	resourceType string,
	action string,
	payload json.RawMessage,
) (int64, bool, error) {

	const q = `
	INSERT INTO gocardless_webhook_events (
		event_id,
		resource_type,
		action,
		payload
	)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (event_id)
	DO NOTHING
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, eventID, resourceType, action, payload).Scan(&id)
	if err != nil {
		// GoCardless retries deliveries; a duplicate event id is fine
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkProcessed(ctx context.Context, id int64) error {
	const q = `
	UPDATE gocardless_webhook_events
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	const q = `
	UPDATE gocardless_webhook_events
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, id, reason)
	return err
}
