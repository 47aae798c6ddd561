package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"gridwalk/entity"
	"gridwalk/persistence"
)

// Players handles player lifecycle against the persistence layer: a
// returning name resumes at its saved position, a new name gets a fresh
// record at the spawn point.
type Players struct {
	store persistence.Storage
	clock entity.Clock
	speed float64
}

// NewPlayers creates the lifecycle manager.
func NewPlayers(store persistence.Storage, speed float64, clock entity.Clock) *Players {
	return &Players{store: store, clock: clock, speed: speed}
}

// GetOrCreate loads the named player or creates one at the given spawn
// position. The returned model is the server's authoritative copy.
func (p *Players) GetOrCreate(name string, spawn entity.Position) (*entity.Player, error) {
	record, err := p.store.LoadPlayerByName(name)
	if errors.Is(err, persistence.ErrNotFound) {
		record = &persistence.PlayerRecord{
			ID:        ksuid.New().String(),
			Name:      name,
			X:         spawn.X,
			Y:         spawn.Y,
			Speed:     p.speed,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := p.store.SavePlayer(record); err != nil {
			return nil, fmt.Errorf("failed to save new player: %v", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %v", name, err)
	}

	return entity.NewPlayer(
		record.ID,
		record.Name,
		entity.Position{X: record.X, Y: record.Y},
		record.Speed,
		entity.ModeControlled,
		p.clock,
	), nil
}

// Save writes the player's current state back to storage.
func (p *Players) Save(player *entity.Player) error {
	pos, _ := player.Snapshot()
	record := &persistence.PlayerRecord{
		ID:        player.ID,
		Name:      player.Name,
		X:         pos.X,
		Y:         pos.Y,
		Speed:     player.Speed,
		UpdatedAt: time.Now(),
	}
	if err := p.store.SavePlayer(record); err != nil {
		return fmt.Errorf("failed to save player %s: %v", player.ID, err)
	}
	return nil
}
