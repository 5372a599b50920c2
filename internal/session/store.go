// Package session stores redirect-flow anti-forgery tokens. Tokens live in an
// embedded BoltDB file: a single bucket maps the caller's session id to the
// active token, and consumption deletes the key in the same transaction that
// reads it, which gives the single-use guarantee without a second round trip.
package session

import (
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
)

// tokenBucket is the fixed key under which the driver keeps session tokens,
// one entry per caller session.
const tokenBucket = "gocardless_session_token"

// ErrNoToken is returned when a session has no active token, either because
// no redirect flow was started or because the token was already consumed.
var ErrNoToken = errors.New("no session token stored")

type Store interface {
	Put(sessionID, token string) error
	Take(sessionID string) (string, error)
	Close() error
}

type store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the token database at path.
func NewStore(path string) (Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tokenBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &store{db: db}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

// Put stores the active token for a session, replacing any prior pending one.
func (s *store) Put(sessionID, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(tokenBucket)).Put([]byte(sessionID), []byte(token))
	})
}

// Take reads and clears the session's token in one transaction. A second Take
// for the same session returns ErrNoToken.
func (s *store) Take(sessionID string) (string, error) {
	var token string

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tokenBucket))
		v := b.Get([]byte(sessionID))
		if v == nil {
			return ErrNoToken
		}
		token = string(v)
		return b.Delete([]byte(sessionID))
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
