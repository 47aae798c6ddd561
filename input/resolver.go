package input

import "gridwalk/entity"

// Key is a logical movement key. The core never sees device scan codes; the
// input collaborator translates those before calling in.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
)

func (k Key) vertical() bool {
	return k == KeyUp || k == KeyDown
}

func (k Key) direction() entity.Direction {
	switch k {
	case KeyUp:
		return entity.North
	case KeyDown:
		return entity.South
	case KeyLeft:
		return entity.West
	default:
		return entity.East
	}
}

// Resolver converts a stream of key press/release events into the single
// current movement direction. Held keys are kept in press order; on each
// axis the most recently pressed key wins, so holding left and then right
// moves right, and releasing right reverts to left.
type Resolver struct {
	held []Key // oldest press first
}

// Press records a key going down and returns the resulting direction.
// Pressing a key that is already held moves it to the front of the recency
// order, matching keyboard auto-repeat behavior.
func (r *Resolver) Press(k Key) entity.Direction {
	r.remove(k)
	r.held = append(r.held, k)
	return r.Current()
}

// Release records a key going up and returns the resulting direction.
// Releasing a key that is not the most recent on its axis does not change
// the output.
func (r *Resolver) Release(k Key) entity.Direction {
	r.remove(k)
	return r.Current()
}

func (r *Resolver) remove(k Key) {
	for i, held := range r.held {
		if held == k {
			r.held = append(r.held[:i], r.held[i+1:]...)
			return
		}
	}
}

// Current derives the direction from the held keys: the newest held key on
// each axis contributes that axis' component.
func (r *Resolver) Current() entity.Direction {
	vertical := entity.DirectionNone
	horizontal := entity.DirectionNone
	for i := len(r.held) - 1; i >= 0; i-- {
		k := r.held[i]
		if k.vertical() && vertical == entity.DirectionNone {
			vertical = k.direction()
		} else if !k.vertical() && horizontal == entity.DirectionNone {
			horizontal = k.direction()
		}
	}
	return entity.Compose(vertical, horizontal)
}
