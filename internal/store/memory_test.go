package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiwander/go-server/internal/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	s := &game.Session{ID: "abc123"}
	require.NoError(t, m.Save(ctx, s))

	got, err := m.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	first := &game.Session{ID: "abc123"}
	second := &game.Session{ID: "abc123"}
	require.NoError(t, m.Save(ctx, first))
	require.NoError(t, m.Save(ctx, second))

	got, err := m.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Same(t, second, got)
}
