package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	record := Record{
		SubjectID: "alice@example.com",
		ClientID:  "client-123",
		IssuedAt:  time.Now(),
	}
	require.NoError(t, store.Put(ctx, record))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, record.SubjectID, got.SubjectID)
	assert.Equal(t, record.ClientID, got.ClientID)

	require.NoError(t, store.Delete(ctx))
	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	// Deleting an empty store is not an error.
	assert.NoError(t, store.Delete(ctx))
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Record{SubjectID: "first"}))
	require.NoError(t, store.Put(ctx, Record{SubjectID: "second"}))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.SubjectID)
}
