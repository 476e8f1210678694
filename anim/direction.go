package anim

import "fmt"

// Direction is the loop animation direction of a tag, stored as the raw byte
// found in the file. Values above PingPongReverse are kept as they are and
// reported as unknown.
type Direction uint8

const (
	Forward         Direction = iota // 0 = forward
	Reverse                          // 1 = reverse
	PingPong                         // 2 = ping-pong
	PingPongReverse                  // 3 = ping-pong reverse
)

// Known reports whether d is one of the four directions playback understands.
func (d Direction) Known() bool {
	return d <= PingPongReverse
}

// Raw returns the encoded value of the direction.
func (d Direction) Raw() uint8 {
	return uint8(d)
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case PingPong:
		return "pingpong"
	case PingPongReverse:
		return "pingpong_reverse"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}

// ParseDirection is the inverse of Direction.String. Strings of the form
// "unknown(N)" round-trip to Direction(N).
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	case "pingpong":
		return PingPong, nil
	case "pingpong_reverse":
		return PingPongReverse, nil
	}
	var raw uint8
	if _, err := fmt.Sscanf(s, "unknown(%d)", &raw); err == nil {
		return Direction(raw), nil
	}
	return 0, fmt.Errorf("anim: invalid direction %q", s)
}

// forwardSeed reports whether a tag with this direction starts on its first
// frame moving forward. Unknown directions seed like Forward.
func (d Direction) forwardSeed() bool {
	return d != Reverse && d != PingPongReverse
}
