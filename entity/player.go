package entity

import (
	"sync"
	"time"
)

// Mode tags which side of the wire drives a Player instance.
type Mode int

const (
	// ModeControlled marks a model whose direction originates locally: the
	// client's own player, and the server's authoritative copies. Network
	// updates may correct its position but never overwrite its direction.
	ModeControlled Mode = iota
	// ModeRemote marks a replica of somebody else's player. It is mutated
	// only by network updates, which overwrite position and direction both.
	ModeRemote
)

// Position is a continuous 2D world coordinate, in tiles.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clock supplies the current time. Injected so that movement integration is
// deterministic under test.
type Clock func() time.Time

// Observer receives notifications when a Player changes direction. Both the
// rendering collaborator and the network relay register through this.
type Observer interface {
	DirectionChanged(p *Player)
}

// Player holds the state of one player entity. Position is not stored as a
// live coordinate: it is derived on demand from the last snapshot, the
// current direction and the elapsed time, so that any two holders of the
// same (snapshot, direction, speed) agree on where the player is.
type Player struct {
	ID    string
	Name  string
	Speed float64

	mu           sync.Mutex
	mode         Mode
	lastPosition Position
	lastChange   time.Time
	direction    Direction
	clock        Clock
	observers    []Observer
}

// NewPlayer creates a player at rest at the given position.
func NewPlayer(id, name string, pos Position, speed float64, mode Mode, clock Clock) *Player {
	if clock == nil {
		clock = time.Now
	}
	return &Player{
		ID:           id,
		Name:         name,
		Speed:        speed,
		mode:         mode,
		lastPosition: pos,
		lastChange:   clock(),
		clock:        clock,
	}
}

func (p *Player) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Player) Direction() Direction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.direction
}

// Position returns the current position, integrated from the last snapshot.
func (p *Player) Position() Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() Position {
	elapsed := p.clock().Sub(p.lastChange).Seconds()
	dx, dy := p.direction.Vector()
	return Position{
		X: p.lastPosition.X + dx*p.Speed*elapsed,
		Y: p.lastPosition.Y + dy*p.Speed*elapsed,
	}
}

// SetDirection changes the direction of movement, snapshotting the position
// at the moment of change, and notifies observers. A no-op if the direction
// is unchanged, so observers only ever see actual changes.
func (p *Player) SetDirection(d Direction) {
	p.mu.Lock()
	if d == p.direction {
		p.mu.Unlock()
		return
	}
	p.lastPosition = p.positionLocked()
	p.lastChange = p.clock()
	p.direction = d
	observers := append([]Observer(nil), p.observers...)
	p.mu.Unlock()

	for _, o := range observers {
		o.DirectionChanged(p)
	}
}

// SetPosition absolutely repositions the player without touching its
// direction.
func (p *Player) SetPosition(pos Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPosition = pos
	p.lastChange = p.clock()
}

// Apply applies an authoritative state update from the network. Remote
// models take both position and direction; controlled models take only the
// position correction and keep their locally-asserted direction. The update
// is atomic: observers never see the new direction with the old position.
func (p *Player) Apply(pos Position, d Direction) {
	p.mu.Lock()
	p.lastPosition = pos
	p.lastChange = p.clock()
	changed := false
	if p.mode == ModeRemote && d != p.direction {
		p.direction = d
		changed = true
	}
	observers := append([]Observer(nil), p.observers...)
	p.mu.Unlock()

	if changed {
		for _, o := range observers {
			o.DirectionChanged(p)
		}
	}
}

// Snapshot returns a consistent (position, direction) pair taken under one
// lock acquisition.
func (p *Player) Snapshot() (Position, Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked(), p.direction
}

// AddObserver registers an observer for direction changes.
func (p *Player) AddObserver(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// RemoveObserver unregisters a previously added observer.
func (p *Player) RemoveObserver(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.observers {
		if existing == o {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			return
		}
	}
}
