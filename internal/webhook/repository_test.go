package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	payload := json.RawMessage(`{"id":"EV001"}`)

	t.Run("Inserted", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO gocardless_webhook_events").
			WithArgs("EV001", "payments", "confirmed", []byte(payload)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

		id, dup, err := repo.SaveEvent(context.Background(), "EV001", "payments", "confirmed", payload)
		assert.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, int64(11), id)
	})

	t.Run("DuplicateIsIdempotent", func(t *testing.T) {
		// ON CONFLICT DO NOTHING returns no row
		mock.ExpectQuery("INSERT INTO gocardless_webhook_events").
			WithArgs("EV001", "payments", "confirmed", []byte(payload)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		id, dup, err := repo.SaveEvent(context.Background(), "EV001", "payments", "confirmed", payload)
		assert.NoError(t, err)
		assert.True(t, dup)
		assert.Zero(t, id)
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO gocardless_webhook_events").
			WillReturnError(errors.New("db error"))

		_, _, err := repo.SaveEvent(context.Background(), "EV001", "payments", "confirmed", payload)
		assert.Error(t, err)
	})
}

func TestRepository_MarkProcessedAndFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("MarkProcessed", func(t *testing.T) {
		mock.ExpectExec("UPDATE gocardless_webhook_events").
			WithArgs(int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkProcessed(context.Background(), 11))
	})

	t.Run("MarkFailed", func(t *testing.T) {
		mock.ExpectExec("UPDATE gocardless_webhook_events").
			WithArgs(int64(11), "sink exploded").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkFailed(context.Background(), 11, "sink exploded"))
	})
}
