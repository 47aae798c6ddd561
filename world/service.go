package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"gridwalk/config"
	"gridwalk/entity"
	"gridwalk/logging"
	"gridwalk/messages"
	"gridwalk/persistence"
)

// ErrNotController is returned when a session issues a direction change for
// a player it does not control.
var ErrNotController = errors.New("session does not control player")

// ErrAlreadyControlled is returned when a join names a player that another
// session currently controls.
var ErrAlreadyControlled = errors.New("player is already controlled")

// Sender delivers a message to a session. Implementations must not block:
// the world holds its lock while fanning out a broadcast so that every
// observer sees the same post-change snapshot.
type Sender interface {
	Send(sessionID string, msg messages.BaseMessage)
}

// Service is the authoritative world. All mutation of player models is
// serialized through one mutex; broadcasts are enqueued under that same
// mutex, making each change and its fan-out atomic with respect to any
// other change.
type Service struct {
	cfg     config.WorldConfig
	sender  Sender
	players *Players
	chunks  *ChunkManager
	clock   entity.Clock
	rng     *rand.Rand

	mu          sync.Mutex
	entities    map[string]*entity.Player       // player ID -> authoritative model
	controllers map[string]string               // player ID -> controlling session
	controlled  map[string]string               // session ID -> controlled player
	observers   map[string]map[string]struct{}  // player ID -> observing sessions
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewService creates the world service.
func NewService(cfg config.WorldConfig, store persistence.Storage, sender Sender, clock entity.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		cfg:         cfg,
		sender:      sender,
		players:     NewPlayers(store, cfg.Speed, clock),
		chunks:      NewChunkManager(cfg.ChunkSize, store),
		clock:       clock,
		rng:         rand.New(rand.NewSource(clock().UnixNano())),
		entities:    make(map[string]*entity.Player),
		controllers: make(map[string]string),
		controlled:  make(map[string]string),
		observers:   make(map[string]map[string]struct{}),
		stop:        make(chan struct{}),
	}
}

// Start launches the visibility sweep, which picks up players drifting in
// and out of each other's view between direction changes.
func (s *Service) Start() {
	interval := time.Duration(s.cfg.SweepIntervalMs) * time.Millisecond
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.refreshVisibilityLocked()
				s.mu.Unlock()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the visibility sweep.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Join assigns a controlled player to the session: the player is loaded or
// created, the session becomes its sole controller, and the session receives
// a welcome, the surrounding terrain and announcements of every visible
// player.
func (s *Service) Join(sessionID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.controlled[sessionID]; ok {
		return fmt.Errorf("session %s already controls a player", sessionID)
	}
	for id, controllerSession := range s.controllers {
		player := s.entities[id]
		if player != nil && player.Name == name && controllerSession != sessionID {
			return fmt.Errorf("%q: %w", name, ErrAlreadyControlled)
		}
	}

	player, err := s.players.GetOrCreate(name, s.findSpawnLocked())
	if err != nil {
		return err
	}

	s.entities[player.ID] = player
	s.controllers[player.ID] = sessionID
	s.controlled[sessionID] = player.ID
	if s.observers[player.ID] == nil {
		s.observers[player.ID] = make(map[string]struct{})
	}

	pos, _ := player.Snapshot()
	s.sender.Send(sessionID, messages.BaseMessage{
		Type: messages.MessageTypeWelcome,
		Payload: messages.WelcomeMessage{
			PlayerID:   player.ID,
			Name:       player.Name,
			X:          pos.X,
			Y:          pos.Y,
			Speed:      player.Speed,
			ViewRadius: s.cfg.ViewRadius,
		},
	})

	for _, chunk := range s.chunks.ChunksAround(int(pos.X), int(pos.Y)) {
		s.sender.Send(sessionID, messages.BaseMessage{
			Type:    messages.MessageTypeTerrain,
			Payload: chunk.Message(),
		})
	}

	s.refreshVisibilityLocked()
	logging.Log.Infof("player %s (%s) joined, controlled by session %s", player.Name, player.ID, sessionID)
	return nil
}

// Leave revokes the session's control, persists its player and removes the
// session from every observation set. Safe to call for sessions that never
// joined.
func (s *Service) Leave(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerID, ok := s.controlled[sessionID]
	if !ok {
		return
	}
	delete(s.controlled, sessionID)
	delete(s.controllers, playerID)

	player := s.entities[playerID]
	delete(s.entities, playerID)
	if player != nil {
		if err := s.players.Save(player); err != nil {
			logging.Log.Warnf("persisting %s on leave: %v", playerID, err)
		}
	}

	left := messages.BaseMessage{
		Type:    messages.MessageTypePlayerLeft,
		Payload: messages.PlayerLeftMessage{PlayerID: playerID},
	}
	for observerSession := range s.observers[playerID] {
		if observerSession != sessionID {
			s.sender.Send(observerSession, left)
		}
	}
	delete(s.observers, playerID)

	for _, sessions := range s.observers {
		delete(sessions, sessionID)
	}
	logging.Log.Infof("session %s left, control of %s revoked", sessionID, playerID)
}

// SetDirection applies a direction change from the controlling session and
// broadcasts the resulting state, with a position snapshot taken at the
// moment of change, to every observing session.
func (s *Service) SetDirection(sessionID, playerID string, direction entity.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controllers[playerID] != sessionID {
		logging.Log.Warnf("session %s tried to steer player %s without control", sessionID, playerID)
		return ErrNotController
	}

	player := s.entities[playerID]
	if player == nil {
		return fmt.Errorf("no model for player %s", playerID)
	}

	player.SetDirection(direction)
	s.broadcastStateLocked(player)
	s.refreshVisibilityLocked()
	return nil
}

func (s *Service) broadcastStateLocked(player *entity.Player) {
	pos, dir := player.Snapshot()
	msg := messages.BaseMessage{
		Type: messages.MessageTypePlayerState,
		Payload: messages.PlayerStateMessage{
			PlayerID:  player.ID,
			X:         pos.X,
			Y:         pos.Y,
			Direction: dir.String(),
		},
	}
	for observerSession := range s.observers[player.ID] {
		s.sender.Send(observerSession, msg)
	}
}

// refreshVisibilityLocked recomputes the observation relation from current
// positions. Sessions gaining sight of a player get a player_joined with a
// full state snapshot; sessions losing sight get a player_left.
func (s *Service) refreshVisibilityLocked() {
	for sessionID, ownID := range s.controlled {
		own := s.entities[ownID]
		if own == nil {
			continue
		}
		ownPos := own.Position()

		for playerID, player := range s.entities {
			pos, dir := player.Snapshot()
			visible := playerID == ownID ||
				chebyshev(ownPos, pos) <= float64(s.cfg.ViewRadius)
			_, observing := s.observers[playerID][sessionID]

			if visible && !observing {
				s.observers[playerID][sessionID] = struct{}{}
				if playerID != ownID {
					s.sender.Send(sessionID, messages.BaseMessage{
						Type: messages.MessageTypePlayerJoined,
						Payload: messages.PlayerJoinedMessage{
							PlayerID:  playerID,
							Name:      player.Name,
							X:         pos.X,
							Y:         pos.Y,
							Speed:     player.Speed,
							Direction: dir.String(),
						},
					})
				}
			} else if !visible && observing {
				delete(s.observers[playerID], sessionID)
				s.sender.Send(sessionID, messages.BaseMessage{
					Type:    messages.MessageTypePlayerLeft,
					Payload: messages.PlayerLeftMessage{PlayerID: playerID},
				})
			}
		}
	}
}

// findSpawnLocked picks a walkable spawn position scattered around the
// configured spawn point.
func (s *Service) findSpawnLocked() entity.Position {
	for attempt := 0; attempt < 32; attempt++ {
		x := s.cfg.SpawnX + float64(s.rng.Intn(11)-5)
		y := s.cfg.SpawnY + float64(s.rng.Intn(11)-5)
		if s.chunks.Walkable(int(x), int(y)) {
			return entity.Position{X: x, Y: y}
		}
	}
	return entity.Position{X: s.cfg.SpawnX, Y: s.cfg.SpawnY}
}

func chebyshev(a, b entity.Position) float64 {
	return math.Max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
}
