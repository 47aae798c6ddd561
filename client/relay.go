package client

import (
	"gridwalk/entity"
	"gridwalk/messages"
)

// directionRelay forwards direction changes of the controlled player to the
// server. It is attached only to the controlled model, so direction changes
// on remote replicas never produce outgoing traffic; the mode check guards
// against a model whose control was handed off.
type directionRelay struct {
	sender messageSender
}

func (r *directionRelay) DirectionChanged(p *entity.Player) {
	if p.Mode() != entity.ModeControlled {
		return
	}
	_ = r.sender.SendMessage(messages.BaseMessage{
		Type: messages.MessageTypeSetDirection,
		Payload: messages.SetDirectionMessage{
			PlayerID:  p.ID,
			Direction: p.Direction().String(),
		},
	})
}
