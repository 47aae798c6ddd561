package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *jsonData
}

// jsonData represents the structure of the JSON database
type jsonData struct {
	Players map[string]*PlayerRecord `json:"players"`
	Chunks  map[string]*ChunkRecord  `json:"chunks"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &jsonData{
			Players: make(map[string]*PlayerRecord),
			Chunks:  make(map[string]*ChunkRecord),
		},
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %v", err)
		}
	} else {
		// Create file if it doesn't exist
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %v", err)
		}
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(file, js.data)
}

func (js *JSONStore) saveToFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(js.filePath, data, 0644)
}

// SavePlayer saves a player to the store
func (js *JSONStore) SavePlayer(player *PlayerRecord) error {
	js.mutex.Lock()
	copied := *player
	if existing, ok := js.data.Players[player.ID]; ok && copied.CreatedAt.IsZero() {
		copied.CreatedAt = existing.CreatedAt
	}
	js.data.Players[player.ID] = &copied
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadPlayer loads a player by ID
func (js *JSONStore) LoadPlayer(playerID string) (*PlayerRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	player, exists := js.data.Players[playerID]
	if !exists {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}

	copied := *player
	return &copied, nil
}

// LoadPlayerByName loads a player by name
func (js *JSONStore) LoadPlayerByName(name string) (*PlayerRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	for _, player := range js.data.Players {
		if player.Name == name {
			copied := *player
			return &copied, nil
		}
	}

	return nil, fmt.Errorf("player named %s: %w", name, ErrNotFound)
}

// SaveChunk saves a terrain chunk to the store
func (js *JSONStore) SaveChunk(chunk *ChunkRecord) error {
	js.mutex.Lock()
	js.data.Chunks[chunkKey(chunk.X, chunk.Y)] = chunk
	js.mutex.Unlock()

	return js.saveToFile()
}

// LoadChunk loads a terrain chunk by chunk coordinates
func (js *JSONStore) LoadChunk(x, y int) (*ChunkRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	chunk, exists := js.data.Chunks[chunkKey(x, y)]
	if !exists {
		return nil, fmt.Errorf("chunk (%d,%d): %w", x, y, ErrNotFound)
	}

	return chunk, nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}

func chunkKey(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}
