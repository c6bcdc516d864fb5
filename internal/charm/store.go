// ABOUTME: Charm KV durable backend for the note store.
// ABOUTME: Keeps the whole collection as one JSON array under a fixed key.

package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/harper/marginalia/internal/models"
)

// NotesKey is the key holding the serialized note collection.
const NotesKey = "notes"

// KV is the subset of Client the note store needs.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

type NoteStore struct {
	kv KV
}

func NewNoteStore(kv KV) *NoteStore {
	return &NoteStore{kv: kv}
}

// Load decodes the stored collection. A missing key is an empty collection.
func (s *NoteStore) Load(ctx context.Context) ([]*models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.kv.Get([]byte(NotesKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var notes []*models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func (s *NoteStore) Save(ctx context.Context, notes []*models.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := s.kv.Set([]byte(NotesKey), data); err != nil {
		return fmt.Errorf("write notes: %w", err)
	}
	return nil
}
