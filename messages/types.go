package messages

import "encoding/json"

// MessageType defines the type of message being sent
type MessageType string

const (
	MessageTypeJoin         MessageType = "join"
	MessageTypeWelcome      MessageType = "welcome"
	MessageTypeSetDirection MessageType = "set_direction"
	MessageTypePlayerState  MessageType = "player_state"
	MessageTypePlayerJoined MessageType = "player_joined"
	MessageTypePlayerLeft   MessageType = "player_left"
	MessageTypeTerrain      MessageType = "terrain"
	MessageTypeError        MessageType = "error"
)

// BaseMessage is the envelope for all messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// DecodePayload re-marshals an envelope payload into a concrete message
// struct.
func DecodePayload(payload interface{}, dst interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// JoinMessage asks the server to assign this connection a controlled player.
type JoinMessage struct {
	Name string `json:"name"`
}

// WelcomeMessage answers a join with the assigned player and world
// parameters.
type WelcomeMessage struct {
	PlayerID   string  `json:"player_id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Speed      float64 `json:"speed"`
	ViewRadius int     `json:"view_radius"`
}

// SetDirectionMessage is sent by the controlling client when its player's
// direction changes.
type SetDirectionMessage struct {
	PlayerID  string `json:"player_id"`
	Direction string `json:"direction"`
}

// PlayerStateMessage carries the authoritative direction of a player plus a
// position snapshot taken at the moment of change.
type PlayerStateMessage struct {
	PlayerID  string  `json:"player_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
}

// PlayerJoinedMessage announces a player entering a session's view.
type PlayerJoinedMessage struct {
	PlayerID  string  `json:"player_id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Speed     float64 `json:"speed"`
	Direction string  `json:"direction"`
}

// PlayerLeftMessage announces a player leaving a session's view.
type PlayerLeftMessage struct {
	PlayerID string `json:"player_id"`
}

// TerrainMessage carries one chunk of static scene data.
type TerrainMessage struct {
	ChunkX int     `json:"chunk_x"`
	ChunkY int     `json:"chunk_y"`
	Size   int     `json:"size"`
	Tiles  [][]int `json:"tiles"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
