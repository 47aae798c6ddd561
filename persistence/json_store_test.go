package persistence

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store, path
}

func TestPlayerRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	record := &PlayerRecord{
		ID: "p1", Name: "alice", X: 12.5, Y: -3, Speed: 4,
		CreatedAt: time.Unix(1000, 0), UpdatedAt: time.Unix(1000, 0),
	}
	if err := store.SavePlayer(record); err != nil {
		t.Fatalf("save: %v", err)
	}

	byID, err := store.LoadPlayer("p1")
	if err != nil {
		t.Fatalf("load by id: %v", err)
	}
	if byID.Name != "alice" || byID.X != 12.5 || byID.Y != -3 {
		t.Fatalf("unexpected record %+v", byID)
	}

	byName, err := store.LoadPlayerByName("alice")
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	if byName.ID != "p1" {
		t.Fatalf("expected p1, got %s", byName.ID)
	}
}

func TestMissingRecordsReportNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.LoadPlayer("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.LoadPlayerByName("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.LoadChunk(9, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResaveKeepsCreationTime(t *testing.T) {
	store, _ := newTestStore(t)

	created := time.Unix(1000, 0)
	if err := store.SavePlayer(&PlayerRecord{ID: "p1", Name: "alice", CreatedAt: created}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A position save carries no creation time.
	if err := store.SavePlayer(&PlayerRecord{ID: "p1", Name: "alice", X: 50, UpdatedAt: time.Unix(2000, 0)}); err != nil {
		t.Fatalf("resave: %v", err)
	}

	record, err := store.LoadPlayer("p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !record.CreatedAt.Equal(created) {
		t.Fatalf("resave clobbered CreatedAt: %v", record.CreatedAt)
	}
	if record.X != 50 {
		t.Fatalf("resave did not update position: %v", record.X)
	}
}

func TestDataSurvivesReopen(t *testing.T) {
	store, path := newTestStore(t)

	if err := store.SavePlayer(&PlayerRecord{ID: "p1", Name: "alice", X: 7}); err != nil {
		t.Fatalf("save player: %v", err)
	}
	if err := store.SaveChunk(&ChunkRecord{X: 1, Y: -2, Size: 2, Tiles: [][]int{{0, 1}, {2, 3}}}); err != nil {
		t.Fatalf("save chunk: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	player, err := reopened.LoadPlayer("p1")
	if err != nil {
		t.Fatalf("load player after reopen: %v", err)
	}
	if player.X != 7 {
		t.Fatalf("expected X=7, got %v", player.X)
	}
	chunk, err := reopened.LoadChunk(1, -2)
	if err != nil {
		t.Fatalf("load chunk after reopen: %v", err)
	}
	if chunk.Size != 2 || chunk.Tiles[1][0] != 2 {
		t.Fatalf("unexpected chunk %+v", chunk)
	}
}
