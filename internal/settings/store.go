package settings

import (
	"context"
	"database/sql"
	"errors"
)

// Store reads driver settings saved by the host application. A missing key is
// not an error; it resolves to the empty string.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
}

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
