package world

import (
	"errors"
	"fmt"
	"sync"

	"gridwalk/logging"
	"gridwalk/messages"
	"gridwalk/persistence"
)

// Tile types represented as integers for memory efficiency
const (
	TileGrass = iota
	TileSand
	TileWater
	TileTree
	TileRock
)

// Chunk is a square section of terrain. The sync core treats tiles as
// opaque scene data: they are generated, persisted and pushed to clients,
// never interpreted beyond walkability at spawn.
type Chunk struct {
	X     int
	Y     int
	Size  int
	Tiles [][]int
}

// Message converts the chunk to its wire form.
func (c *Chunk) Message() messages.TerrainMessage {
	return messages.TerrainMessage{
		ChunkX: c.X,
		ChunkY: c.Y,
		Size:   c.Size,
		Tiles:  c.Tiles,
	}
}

// ChunkManager manages terrain chunks, generating them lazily and persisting
// them so a world survives restarts.
type ChunkManager struct {
	chunkSize int
	store     persistence.Storage
	mutex     sync.RWMutex
	chunks    map[string]*Chunk
}

// NewChunkManager creates a new chunk manager
func NewChunkManager(chunkSize int, store persistence.Storage) *ChunkManager {
	return &ChunkManager{
		chunkSize: chunkSize,
		store:     store,
		chunks:    make(map[string]*Chunk),
	}
}

// chunkCoordinates calculates the chunk coordinates holding a tile position
func (cm *ChunkManager) chunkCoordinates(x, y int) (int, int) {
	cx := x / cm.chunkSize
	if x < 0 && x%cm.chunkSize != 0 {
		cx--
	}
	cy := y / cm.chunkSize
	if y < 0 && y%cm.chunkSize != 0 {
		cy--
	}
	return cx, cy
}

func chunkKey(chunkX, chunkY int) string {
	return fmt.Sprintf("%d,%d", chunkX, chunkY)
}

// GetChunk retrieves the chunk containing the given tile position.
func (cm *ChunkManager) GetChunk(x, y int) *Chunk {
	chunkX, chunkY := cm.chunkCoordinates(x, y)
	key := chunkKey(chunkX, chunkY)

	cm.mutex.RLock()
	chunk, exists := cm.chunks[key]
	cm.mutex.RUnlock()

	if !exists {
		chunk = cm.loadOrCreateChunk(chunkX, chunkY)
	}

	return chunk
}

func (cm *ChunkManager) loadOrCreateChunk(chunkX, chunkY int) *Chunk {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	key := chunkKey(chunkX, chunkY)
	if chunk, exists := cm.chunks[key]; exists {
		return chunk
	}

	if record, err := cm.store.LoadChunk(chunkX, chunkY); err == nil {
		chunk := &Chunk{X: record.X, Y: record.Y, Size: record.Size, Tiles: record.Tiles}
		cm.chunks[key] = chunk
		return chunk
	} else if !errors.Is(err, persistence.ErrNotFound) {
		logging.Log.Warnf("loading chunk (%d,%d): %v", chunkX, chunkY, err)
	}

	chunk := &Chunk{
		X:     chunkX,
		Y:     chunkY,
		Size:  cm.chunkSize,
		Tiles: generateTiles(chunkX, chunkY, cm.chunkSize),
	}
	cm.chunks[key] = chunk

	if err := cm.store.SaveChunk(&persistence.ChunkRecord{
		X: chunkX, Y: chunkY, Size: cm.chunkSize, Tiles: chunk.Tiles,
	}); err != nil {
		logging.Log.Warnf("saving chunk (%d,%d): %v", chunkX, chunkY, err)
	}

	return chunk
}

// generateTiles produces terrain deterministically from tile coordinates, so
// regenerating a lost chunk yields the same scenery.
func generateTiles(chunkX, chunkY, size int) [][]int {
	tiles := make([][]int, size)
	for row := range tiles {
		tiles[row] = make([]int, size)
		for col := range tiles[row] {
			worldX := chunkX*size + col
			worldY := chunkY*size + row
			tiles[row][col] = tileFor(worldX, worldY)
		}
	}
	return tiles
}

func tileFor(x, y int) int {
	h := uint32(x)*73856093 ^ uint32(y)*19349663
	h ^= h >> 13
	h *= 2654435761
	h ^= h >> 16
	switch {
	case h%31 == 0:
		return TileWater
	case h%23 == 0:
		return TileTree
	case h%17 == 0:
		return TileRock
	case h%11 == 0:
		return TileSand
	default:
		return TileGrass
	}
}

// TileAt returns the tile type at a tile position.
func (cm *ChunkManager) TileAt(x, y int) int {
	chunk := cm.GetChunk(x, y)
	localX := x - chunk.X*cm.chunkSize
	localY := y - chunk.Y*cm.chunkSize
	return chunk.Tiles[localY][localX]
}

// Walkable reports whether a player may stand on the tile.
func (cm *ChunkManager) Walkable(x, y int) bool {
	switch cm.TileAt(x, y) {
	case TileWater, TileTree, TileRock:
		return false
	default:
		return true
	}
}

// ChunksAround returns the chunk containing the position and its eight
// neighbors, the scene data a freshly spawned client needs.
func (cm *ChunkManager) ChunksAround(x, y int) []*Chunk {
	centerX, centerY := cm.chunkCoordinates(x, y)

	var chunks []*Chunk
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			chunks = append(chunks, cm.GetChunk(
				(centerX+dx)*cm.chunkSize,
				(centerY+dy)*cm.chunkSize,
			))
		}
	}
	return chunks
}
