// ABOUTME: Tests for the charm note backend against an in-memory KV.
// ABOUTME: Covers missing keys, round trips, and corrupt payloads.

package charm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/marginalia/internal/models"
)

type memKV struct {
	data   map[string][]byte
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, badger.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(key, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[string(key)] = value
	return nil
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	notes, err := NewNoteStore(newMemKV()).Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRoundTripPreservesOrderAndFields(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	store := NewNoteStore(kv)
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	in := []*models.Note{
		models.NewNote(models.NoteDraft{ContentID: "p1", Text: "b", HighlightedText: "beta", ContextBefore: "x ", ContextAfter: " y"}, created),
		models.NewNote(models.NoteDraft{ContentID: "p1", Text: "a", HighlightedText: "alpha"}, created),
	}
	in[0].Resolved = true

	require.NoError(t, store.Save(ctx, in))
	assert.Contains(t, kv.data, NotesKey)

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].HighlightedText, out[i].HighlightedText)
		assert.Equal(t, in[i].ContextBefore, out[i].ContextBefore)
		assert.Equal(t, in[i].Resolved, out[i].Resolved)
		assert.True(t, in[i].CreatedAt.Equal(out[i].CreatedAt))
	}
}

func TestSaveEmptyWritesArray(t *testing.T) {
	kv := newMemKV()

	require.NoError(t, NewNoteStore(kv).Save(context.Background(), nil))

	assert.Equal(t, "[]", string(kv.data[NotesKey]))
}

func TestLoadCorruptPayload(t *testing.T) {
	kv := newMemKV()
	kv.data[NotesKey] = []byte("{not json")

	_, err := NewNoteStore(kv).Load(context.Background())

	assert.Error(t, err)
}

func TestSaveFailureIsReturned(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errors.New("read-only")

	err := NewNoteStore(kv).Save(context.Background(), nil)

	assert.ErrorIs(t, err, kv.setErr)
}
