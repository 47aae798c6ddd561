package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gridwalk/entity"
	"gridwalk/input"
	"gridwalk/logging"
	"gridwalk/messages"
	"gridwalk/network"
)

// messageSender is the outbound half of the connection. Split out so the
// sync logic can be exercised without a live socket.
type messageSender interface {
	SendMessage(msg interface{}) error
}

// Client is the client-side synchronization layer. It keeps one model per
// known player: its own player is ModeControlled and relays direction
// changes to the server, every other model is ModeRemote and is mutated
// only by incoming state updates.
type Client struct {
	sender messageSender
	conn   *network.Connection
	clock  entity.Clock

	mu         sync.Mutex
	players    map[string]*entity.Player
	terrain    map[[2]int]messages.TerrainMessage
	selfID     string
	controller *input.PlayerController
	viewRadius int

	ready     chan struct{}
	readyOnce sync.Once
}

// Dial connects to a server, requests control of the named player and
// starts the connection pumps. Use WaitReady before touching the controller.
func Dial(serverURL, name string) (*Client, error) {
	wsConn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v", serverURL, err)
	}

	conn := network.NewConnection(wsConn)
	c := newClient(conn, time.Now)
	c.conn = conn

	go conn.WritePump()
	go conn.ReadPump(c)

	if err := conn.SendMessage(messages.BaseMessage{
		Type:    messages.MessageTypeJoin,
		Payload: messages.JoinMessage{Name: name},
	}); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func newClient(sender messageSender, clock entity.Clock) *Client {
	return &Client{
		sender:  sender,
		clock:   clock,
		players: make(map[string]*entity.Player),
		terrain: make(map[[2]int]messages.TerrainMessage),
		ready:   make(chan struct{}),
	}
}

// WaitReady blocks until the server has assigned this client a player.
func (c *Client) WaitReady(timeout time.Duration) error {
	select {
	case <-c.ready:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("no welcome from server within %v", timeout)
	}
}

// Controller returns the input controller for the client's own player, or
// nil before the welcome arrives.
func (c *Client) Controller() *input.PlayerController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

// Self returns the client's own player model, or nil before the welcome.
func (c *Client) Self() *entity.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.players[c.selfID]
}

// Player returns the model for the given player ID, if known.
func (c *Client) Player(playerID string) *entity.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.players[playerID]
}

// Players returns all currently known player models.
func (c *Client) Players() []*entity.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]*entity.Player, 0, len(c.players))
	for _, p := range c.players {
		all = append(all, p)
	}
	return all
}

// TerrainChunk returns the chunk at the given chunk coordinates, if the
// server has pushed it.
func (c *Client) TerrainChunk(chunkX, chunkY int) (messages.TerrainMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	chunk, ok := c.terrain[[2]int{chunkX, chunkY}]
	return chunk, ok
}

// Close tears down the connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// HandleMessage dispatches a message from the server.
func (c *Client) HandleMessage(_ *network.Connection, message []byte) {
	var baseMsg messages.BaseMessage
	if err := json.Unmarshal(message, &baseMsg); err != nil {
		logging.Log.Warnf("undecodable server message: %v", err)
		return
	}

	switch baseMsg.Type {
	case messages.MessageTypeWelcome:
		c.handleWelcome(baseMsg.Payload)
	case messages.MessageTypePlayerState:
		c.handlePlayerState(baseMsg.Payload)
	case messages.MessageTypePlayerJoined:
		c.handlePlayerJoined(baseMsg.Payload)
	case messages.MessageTypePlayerLeft:
		c.handlePlayerLeft(baseMsg.Payload)
	case messages.MessageTypeTerrain:
		c.handleTerrain(baseMsg.Payload)
	case messages.MessageTypeError:
		var errMsg messages.ErrorMessage
		if err := messages.DecodePayload(baseMsg.Payload, &errMsg); err == nil {
			logging.Log.Warnf("server error %s: %s", errMsg.Code, errMsg.Message)
		}
	default:
		logging.Log.Warnf("unknown server message type %q", baseMsg.Type)
	}
}

func (c *Client) handleWelcome(payload interface{}) {
	var welcome messages.WelcomeMessage
	if err := messages.DecodePayload(payload, &welcome); err != nil {
		logging.Log.Warnf("malformed welcome: %v", err)
		return
	}

	self := entity.NewPlayer(
		welcome.PlayerID,
		welcome.Name,
		entity.Position{X: welcome.X, Y: welcome.Y},
		welcome.Speed,
		entity.ModeControlled,
		c.clock,
	)
	self.AddObserver(&directionRelay{sender: c.sender})

	c.mu.Lock()
	c.selfID = welcome.PlayerID
	c.players[welcome.PlayerID] = self
	c.controller = input.NewPlayerController(self)
	c.viewRadius = welcome.ViewRadius
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })
	logging.Log.Infof("assigned player %s (%s) at (%.1f, %.1f)",
		welcome.Name, welcome.PlayerID, welcome.X, welcome.Y)
}

// handlePlayerState applies an authoritative update. Remote models take the
// whole update; the controlled model takes the position correction only and
// keeps its locally-asserted direction.
func (c *Client) handlePlayerState(payload interface{}) {
	var state messages.PlayerStateMessage
	if err := messages.DecodePayload(payload, &state); err != nil {
		logging.Log.Warnf("malformed player_state: %v", err)
		return
	}

	direction, err := entity.ParseDirection(state.Direction)
	if err != nil {
		logging.Log.Warnf("player_state: %v", err)
		return
	}

	player := c.locateOrCreate(state.PlayerID, "", 0)
	player.Apply(entity.Position{X: state.X, Y: state.Y}, direction)
}

func (c *Client) handlePlayerJoined(payload interface{}) {
	var joined messages.PlayerJoinedMessage
	if err := messages.DecodePayload(payload, &joined); err != nil {
		logging.Log.Warnf("malformed player_joined: %v", err)
		return
	}

	direction, err := entity.ParseDirection(joined.Direction)
	if err != nil {
		logging.Log.Warnf("player_joined: %v", err)
		return
	}

	player := c.locateOrCreate(joined.PlayerID, joined.Name, joined.Speed)
	player.Apply(entity.Position{X: joined.X, Y: joined.Y}, direction)
}

func (c *Client) handlePlayerLeft(payload interface{}) {
	var left messages.PlayerLeftMessage
	if err := messages.DecodePayload(payload, &left); err != nil {
		logging.Log.Warnf("malformed player_left: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if left.PlayerID != c.selfID {
		delete(c.players, left.PlayerID)
	}
}

func (c *Client) handleTerrain(payload interface{}) {
	var terrain messages.TerrainMessage
	if err := messages.DecodePayload(payload, &terrain); err != nil {
		logging.Log.Warnf("malformed terrain: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.terrain[[2]int{terrain.ChunkX, terrain.ChunkY}] = terrain
}

// locateOrCreate finds the model for a player ID, creating a remote replica
// if this is the first mention of it.
func (c *Client) locateOrCreate(playerID, name string, speed float64) *entity.Player {
	c.mu.Lock()
	defer c.mu.Unlock()

	if player, ok := c.players[playerID]; ok {
		return player
	}
	player := entity.NewPlayer(playerID, name, entity.Position{}, speed, entity.ModeRemote, c.clock)
	c.players[playerID] = player
	return player
}
