package input

import "gridwalk/entity"

// PlayerController feeds resolved directions into a player model. Because
// Player.SetDirection ignores no-op changes, observers (and therefore the
// network) only hear about actual direction changes, not every key event.
type PlayerController struct {
	player   *entity.Player
	resolver Resolver
}

func NewPlayerController(player *entity.Player) *PlayerController {
	return &PlayerController{player: player}
}

// KeyDown handles a movement key being pressed.
func (c *PlayerController) KeyDown(k Key) {
	c.player.SetDirection(c.resolver.Press(k))
}

// KeyUp handles a movement key being released.
func (c *PlayerController) KeyUp(k Key) {
	c.player.SetDirection(c.resolver.Release(k))
}

// Player returns the controlled player model.
func (c *PlayerController) Player() *entity.Player {
	return c.player
}
