package handlers

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/segmentio/ksuid"

	"gridwalk/entity"
	"gridwalk/logging"
	"gridwalk/messages"
	"gridwalk/network"
	"gridwalk/world"
)

// ClientHandler manages a single client connection: one session, zero or one
// controlled player.
type ClientHandler struct {
	sessionID string
	conn      *network.Connection
	world     *world.Service
	manager   *ClientManager
}

// HandleClientConnection runs a client connection to completion. On return
// the session has been torn down: control revoked, observation sets purged.
func HandleClientConnection(wsConn *websocket.Conn, worldService *world.Service, clientManager *ClientManager) {
	conn := network.NewConnection(wsConn)
	handler := &ClientHandler{
		sessionID: ksuid.New().String(),
		conn:      conn,
		world:     worldService,
		manager:   clientManager,
	}
	clientManager.AddSession(handler.sessionID, handler)
	logging.Log.Infof("session %s connected from %s", handler.sessionID, wsConn.RemoteAddr())

	go conn.WritePump()
	conn.ReadPump(handler)

	// Read pump has exited: the connection is gone. Any in-flight broadcast
	// to this session lands in the removed-session drop path of the manager.
	clientManager.RemoveSession(handler.sessionID)
	handler.world.Leave(handler.sessionID)
	logging.Log.Infof("session %s disconnected", handler.sessionID)
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var baseMsg messages.BaseMessage
	if err := json.Unmarshal(message, &baseMsg); err != nil {
		// Protocol violation: drop the message, keep the connection.
		logging.Log.Warnf("session %s sent undecodable message: %v", h.sessionID, err)
		return
	}

	switch baseMsg.Type {
	case messages.MessageTypeJoin:
		h.handleJoin(baseMsg.Payload)
	case messages.MessageTypeSetDirection:
		h.handleSetDirection(baseMsg.Payload)
	default:
		logging.Log.Warnf("session %s sent unknown message type %q", h.sessionID, baseMsg.Type)
		h.sendError("UNKNOWN_MESSAGE_TYPE", "unknown message type")
	}
}

func (h *ClientHandler) handleJoin(payload interface{}) {
	var joinMsg messages.JoinMessage
	if err := messages.DecodePayload(payload, &joinMsg); err != nil {
		logging.Log.Warnf("session %s sent malformed join: %v", h.sessionID, err)
		return
	}
	if joinMsg.Name == "" {
		h.sendError("JOIN_FAILED", "a player name is required")
		return
	}

	if err := h.world.Join(h.sessionID, joinMsg.Name); err != nil {
		logging.Log.Warnf("join failed for session %s: %v", h.sessionID, err)
		h.sendError("JOIN_FAILED", err.Error())
	}
}

func (h *ClientHandler) handleSetDirection(payload interface{}) {
	var dirMsg messages.SetDirectionMessage
	if err := messages.DecodePayload(payload, &dirMsg); err != nil {
		logging.Log.Warnf("session %s sent malformed set_direction: %v", h.sessionID, err)
		return
	}

	direction, err := entity.ParseDirection(dirMsg.Direction)
	if err != nil {
		logging.Log.Warnf("session %s: %v", h.sessionID, err)
		h.sendError("BAD_DIRECTION", err.Error())
		return
	}

	switch err := h.world.SetDirection(h.sessionID, dirMsg.PlayerID, direction); {
	case err == nil:
	case err == world.ErrNotController:
		// Authorization violation: state untouched, nothing broadcast, the
		// connection stays up.
		h.sendError("NOT_CONTROLLER", "you do not control that player")
	default:
		logging.Log.Warnf("set_direction failed for session %s: %v", h.sessionID, err)
		h.sendError("SET_DIRECTION_FAILED", err.Error())
	}
}

func (h *ClientHandler) sendError(code, message string) {
	_ = h.conn.SendMessage(messages.BaseMessage{
		Type: messages.MessageTypeError,
		Payload: messages.ErrorMessage{
			Code:    code,
			Message: message,
		},
	})
}
