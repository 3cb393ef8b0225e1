package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return st
}

func TestNewSnapshot(t *testing.T) {
	snap := New("movie-lens", []byte{1, 2, 3})
	if snap.ID == uuid.Nil {
		t.Error("snapshot should get a fresh ID")
	}
	if snap.Name != "movie-lens" {
		t.Errorf("name = %q, want movie-lens", snap.Name)
	}
	if time.Since(snap.CreatedAt) > time.Minute {
		t.Error("creation time should be now")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	snap := New("demo", []byte("engine blob"))
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := st.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.ID != snap.ID || got.Name != snap.Name {
		t.Errorf("loaded %s/%s, want %s/%s", got.ID, got.Name, snap.ID, snap.Name)
	}
	if string(got.Data) != "engine blob" {
		t.Errorf("data = %q, want the saved blob", got.Data)
	}
}

func TestFileStoreListOmitsData(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	older := New("older", []byte("aaa"))
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := New("newer", []byte("bbb"))
	for _, s := range []*Snapshot{older, newer} {
		if err := st.Save(ctx, s); err != nil {
			t.Fatalf("Save(%s) error: %v", s.Name, err)
		}
	}

	snaps, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("List() = %d snapshots, want 2", len(snaps))
	}
	if snaps[0].Name != "newer" {
		t.Errorf("first listed = %q, want the most recent", snaps[0].Name)
	}
	for _, s := range snaps {
		if s.Data != nil {
			t.Errorf("listing %q should omit the payload", s.Name)
		}
	}
}

func TestFileStoreNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	if _, err := st.Load(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	snap := New("gone", []byte("x"))
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := st.Delete(ctx, snap.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := st.Load(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after delete = %v, want ErrNotFound", err)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	snap := New("v", []byte("one"))
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	snap.Data = []byte("two")
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save() again error: %v", err)
	}

	got, err := st.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if string(got.Data) != "two" {
		t.Errorf("data = %q, want the overwritten payload", got.Data)
	}
}
