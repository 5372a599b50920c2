package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutAndTake(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("sess-1", "token-abc"))

	token, err := s.Take("sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "token-abc", token)
}

func TestStore_TakeIsSingleUse(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("sess-1", "token-abc"))

	_, err := s.Take("sess-1")
	require.NoError(t, err)

	// second consume must fail, the token was cleared on first read
	_, err = s.Take("sess-1")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStore_TakeWithoutPut(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Take("sess-unknown")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStore_PutReplacesPendingToken(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("sess-1", "token-old"))
	require.NoError(t, s.Put("sess-1", "token-new"))

	token, err := s.Take("sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "token-new", token)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("sess-1", "token-one"))
	require.NoError(t, s.Put("sess-2", "token-two"))

	token, err := s.Take("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "token-one", token)

	token, err = s.Take("sess-2")
	require.NoError(t, err)
	assert.Equal(t, "token-two", token)
}

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		assert.Len(t, token, tokenLength)
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true

		for _, r := range token {
			assert.Contains(t, tokenAlphabet, string(r))
		}
	}
}
