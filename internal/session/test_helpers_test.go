package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestSession(t *testing.T) *Session {
	t.Helper()
	ss, err := createTestStore(t).Begin(context.Background(), "sess-1", "room@conference.meet.example.com")
	require.NoError(t, err)
	return ss
}
