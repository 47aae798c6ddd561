package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		speed DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS chunks (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		size INTEGER NOT NULL,
		tiles JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (x, y)
	);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SavePlayer saves a player to the database
func (ps *PostgresStore) SavePlayer(player *PlayerRecord) error {
	query := `
	INSERT INTO players (id, name, x, y, speed)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id)
	DO UPDATE SET
		x = $3, y = $4, speed = $5,
		updated_at = NOW()
	`

	_, err := ps.db.Exec(query, player.ID, player.Name, player.X, player.Y, player.Speed)
	if err != nil {
		return fmt.Errorf("failed to save player: %v", err)
	}

	return nil
}

// LoadPlayer loads a player from the database by ID
func (ps *PostgresStore) LoadPlayer(playerID string) (*PlayerRecord, error) {
	query := `SELECT id, name, x, y, speed, created_at, updated_at FROM players WHERE id = $1`
	return ps.scanPlayer(ps.db.QueryRow(query, playerID))
}

// LoadPlayerByName loads a player from the database by name
func (ps *PostgresStore) LoadPlayerByName(name string) (*PlayerRecord, error) {
	query := `SELECT id, name, x, y, speed, created_at, updated_at FROM players WHERE name = $1`
	return ps.scanPlayer(ps.db.QueryRow(query, name))
}

func (ps *PostgresStore) scanPlayer(row *sql.Row) (*PlayerRecord, error) {
	var player PlayerRecord
	err := row.Scan(&player.ID, &player.Name, &player.X, &player.Y, &player.Speed,
		&player.CreatedAt, &player.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %v", err)
	}
	return &player, nil
}

// SaveChunk saves a terrain chunk to the database
func (ps *PostgresStore) SaveChunk(chunk *ChunkRecord) error {
	tilesJSON, err := json.Marshal(chunk.Tiles)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk tiles: %v", err)
	}

	query := `
	INSERT INTO chunks (x, y, size, tiles)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (x, y)
	DO UPDATE SET size = $3, tiles = $4, updated_at = NOW()
	`

	if _, err := ps.db.Exec(query, chunk.X, chunk.Y, chunk.Size, tilesJSON); err != nil {
		return fmt.Errorf("failed to save chunk: %v", err)
	}

	return nil
}

// LoadChunk loads a terrain chunk from the database by chunk coordinates
func (ps *PostgresStore) LoadChunk(x, y int) (*ChunkRecord, error) {
	query := `SELECT x, y, size, tiles FROM chunks WHERE x = $1 AND y = $2`

	chunk := ChunkRecord{}
	var tilesJSON []byte
	err := ps.db.QueryRow(query, x, y).Scan(&chunk.X, &chunk.Y, &chunk.Size, &tilesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk: %v", err)
	}

	if err := json.Unmarshal(tilesJSON, &chunk.Tiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chunk tiles: %v", err)
	}

	return &chunk, nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
