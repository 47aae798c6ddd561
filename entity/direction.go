package entity

import "fmt"

// Direction is one of the eight compass directions, or DirectionNone for a
// player at rest.
type Direction int

const (
	DirectionNone Direction = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = map[Direction]string{
	DirectionNone: "none",
	North:         "north",
	NorthEast:     "northeast",
	East:          "east",
	SouthEast:     "southeast",
	South:         "south",
	SouthWest:     "southwest",
	West:          "west",
	NorthWest:     "northwest",
}

var directionValues = map[string]Direction{
	"none":      DirectionNone,
	"north":     North,
	"northeast": NorthEast,
	"east":      East,
	"southeast": SouthEast,
	"south":     South,
	"southwest": SouthWest,
	"west":      West,
	"northwest": NorthWest,
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection converts a wire name ("north", "southwest", "none", ...)
// into a Direction.
func ParseDirection(s string) (Direction, error) {
	d, ok := directionValues[s]
	if !ok {
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// Vector returns the movement components of the direction. North is negative
// Y. Diagonal components are not normalized: a player moving northeast covers
// a full speed unit on each axis per second.
func (d Direction) Vector() (dx, dy float64) {
	switch d {
	case North:
		return 0, -1
	case NorthEast:
		return 1, -1
	case East:
		return 1, 0
	case SouthEast:
		return 1, 1
	case South:
		return 0, 1
	case SouthWest:
		return -1, 1
	case West:
		return -1, 0
	case NorthWest:
		return -1, -1
	default:
		return 0, 0
	}
}

// Compose combines a vertical component (North, South or DirectionNone) with
// a horizontal component (East, West or DirectionNone).
func Compose(vertical, horizontal Direction) Direction {
	switch vertical {
	case North:
		switch horizontal {
		case East:
			return NorthEast
		case West:
			return NorthWest
		default:
			return North
		}
	case South:
		switch horizontal {
		case East:
			return SouthEast
		case West:
			return SouthWest
		default:
			return South
		}
	default:
		return horizontal
	}
}
