package client

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gridwalk/entity"
	"gridwalk/input"
	"gridwalk/messages"
)

type captureSender struct {
	mu   sync.Mutex
	sent []messages.BaseMessage
}

func (s *captureSender) SendMessage(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg.(messages.BaseMessage))
	return nil
}

func (s *captureSender) directions() []messages.SetDirectionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []messages.SetDirectionMessage
	for _, msg := range s.sent {
		if msg.Type == messages.MessageTypeSetDirection {
			out = append(out, msg.Payload.(messages.SetDirectionMessage))
		}
	}
	return out
}

func fixedClock() time.Time {
	return time.Unix(5000, 0)
}

func deliver(t *testing.T, c *Client, msgType messages.MessageType, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(messages.BaseMessage{Type: msgType, Payload: payload})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c.HandleMessage(nil, raw)
}

func welcomedClient(t *testing.T) (*Client, *captureSender) {
	t.Helper()
	sender := &captureSender{}
	c := newClient(sender, fixedClock)
	deliver(t, c, messages.MessageTypeWelcome, messages.WelcomeMessage{
		PlayerID:   "self",
		Name:       "alice",
		X:          10,
		Y:          10,
		Speed:      4,
		ViewRadius: 10,
	})
	return c, sender
}

func TestWelcomeCreatesControlledPlayer(t *testing.T) {
	c, _ := welcomedClient(t)

	if err := c.WaitReady(time.Second); err != nil {
		t.Fatalf("client not ready after welcome: %v", err)
	}
	self := c.Self()
	if self == nil || self.ID != "self" {
		t.Fatalf("expected a self model, got %v", self)
	}
	if self.Mode() != entity.ModeControlled {
		t.Fatalf("self model is not controlled")
	}
	if c.Controller() == nil {
		t.Fatalf("no input controller after welcome")
	}
	pos := self.Position()
	if pos.X != 10 || pos.Y != 10 {
		t.Fatalf("expected spawn (10, 10), got (%v, %v)", pos.X, pos.Y)
	}
}

func TestControlledDirectionChangesAreRelayed(t *testing.T) {
	c, sender := welcomedClient(t)

	controller := c.Controller()
	controller.KeyDown(input.KeyRight)
	controller.KeyDown(input.KeyUp)
	controller.KeyUp(input.KeyUp)
	controller.KeyUp(input.KeyRight)

	want := []string{"east", "northeast", "east", "none"}
	got := sender.directions()
	if len(got) != len(want) {
		t.Fatalf("expected %d outgoing messages, got %d (%v)", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].PlayerID != "self" || got[i].Direction != w {
			t.Fatalf("message %d: expected (self, %s), got %+v", i, w, got[i])
		}
	}
}

func TestRemoteModelsDoNotRelay(t *testing.T) {
	c, sender := welcomedClient(t)

	deliver(t, c, messages.MessageTypePlayerJoined, messages.PlayerJoinedMessage{
		PlayerID: "p2", Name: "bob", X: 12, Y: 12, Speed: 4, Direction: "none",
	})

	before := len(sender.directions())
	c.Player("p2").SetDirection(entity.North)
	if after := len(sender.directions()); after != before {
		t.Fatalf("direction change on a remote model produced outgoing traffic")
	}
}

func TestPlayerStateAppliesToRemoteModel(t *testing.T) {
	c, _ := welcomedClient(t)

	deliver(t, c, messages.MessageTypePlayerState, messages.PlayerStateMessage{
		PlayerID: "p2", X: 30, Y: 40, Direction: "southwest",
	})

	model := c.Player("p2")
	if model == nil {
		t.Fatalf("state update for an unknown player did not create a model")
	}
	pos, dir := model.Snapshot()
	if pos.X != 30 || pos.Y != 40 || dir != entity.SouthWest {
		t.Fatalf("expected ((30, 40), southwest), got (%v, %v)", pos, dir)
	}

	// Applying the same update again changes nothing.
	deliver(t, c, messages.MessageTypePlayerState, messages.PlayerStateMessage{
		PlayerID: "p2", X: 30, Y: 40, Direction: "southwest",
	})
	pos2, dir2 := model.Snapshot()
	if pos2 != pos || dir2 != dir {
		t.Fatalf("duplicate update changed state to (%v, %v)", pos2, dir2)
	}
}

func TestPlayerStateCorrectsSelfPositionOnly(t *testing.T) {
	c, _ := welcomedClient(t)
	c.Controller().KeyDown(input.KeyRight)

	deliver(t, c, messages.MessageTypePlayerState, messages.PlayerStateMessage{
		PlayerID: "self", X: 11, Y: 10, Direction: "north",
	})

	pos, dir := c.Self().Snapshot()
	if pos.X != 11 || pos.Y != 10 {
		t.Fatalf("expected position correction to (11, 10), got %v", pos)
	}
	if dir != entity.East {
		t.Fatalf("server update overrode local direction with %v", dir)
	}
}

func TestPlayerLeftRemovesModel(t *testing.T) {
	c, _ := welcomedClient(t)

	deliver(t, c, messages.MessageTypePlayerJoined, messages.PlayerJoinedMessage{
		PlayerID: "p2", Name: "bob", X: 12, Y: 12, Speed: 4, Direction: "none",
	})
	deliver(t, c, messages.MessageTypePlayerLeft, messages.PlayerLeftMessage{PlayerID: "p2"})

	if c.Player("p2") != nil {
		t.Fatalf("departed player still has a model")
	}
	if c.Self() == nil {
		t.Fatalf("self model should never be removed")
	}
}

func TestTerrainChunksStored(t *testing.T) {
	c, _ := welcomedClient(t)

	deliver(t, c, messages.MessageTypeTerrain, messages.TerrainMessage{
		ChunkX: 0, ChunkY: 0, Size: 2, Tiles: [][]int{{0, 1}, {1, 0}},
	})

	chunk, ok := c.TerrainChunk(0, 0)
	if !ok {
		t.Fatalf("terrain chunk not stored")
	}
	if chunk.Size != 2 || chunk.Tiles[0][1] != 1 {
		t.Fatalf("unexpected chunk contents %+v", chunk)
	}
}

func TestMalformedMessagesAreDropped(t *testing.T) {
	c, _ := welcomedClient(t)

	c.HandleMessage(nil, []byte("not json"))
	deliver(t, c, messages.MessageTypePlayerState, messages.PlayerStateMessage{
		PlayerID: "p2", X: 1, Y: 1, Direction: "widdershins",
	})

	if c.Player("p2") != nil {
		t.Fatalf("a state update with a bad direction mutated the registry")
	}
}
