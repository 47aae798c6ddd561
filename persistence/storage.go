package persistence

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// PlayerRecord is the persisted form of a player: the state that survives
// between sessions.
type PlayerRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Speed     float64   `json:"speed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChunkRecord is the persisted form of one terrain chunk, keyed by chunk
// coordinates.
type ChunkRecord struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Size  int     `json:"size"`
	Tiles [][]int `json:"tiles"`
}

// Storage defines the interface for data persistence
type Storage interface {
	SavePlayer(player *PlayerRecord) error
	LoadPlayer(playerID string) (*PlayerRecord, error)
	LoadPlayerByName(name string) (*PlayerRecord, error)
	SaveChunk(chunk *ChunkRecord) error
	LoadChunk(x, y int) (*ChunkRecord, error)
	Close() error
}
