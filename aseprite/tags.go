package aseprite

// LoopAnimationDirection represents the direction of the loop animation as
// stored in the file. Values other than the four below are kept as they are.
type LoopAnimationDirection BYTE

const (
	Forward         LoopAnimationDirection = iota // 0 = forward
	Reverse                                       // 1 = reverse
	PingPong                                      // 2 = ping-pong
	PingPongReverse                               // 3 = ping-pong reverse
)

// Tag is one entry of the 0x2018 chunk.
type Tag struct {
	FromFrame          WORD                   // Frame where the tag starts (2 bytes)
	ToFrame            WORD                   // Frame where the tag ends, inclusive (2 bytes)
	AnimationDirection LoopAnimationDirection // Loop animation direction (1 byte)
	Repeat             WORD                   // Repeat N times, 0 means unspecified (2 bytes)
	Name               string                 // Tag name (variable length)
}

// tagEntry is the fixed part of each tag (17 bytes).
type tagEntry struct {
	FromFrame          WORD
	ToFrame            WORD
	AnimationDirection BYTE
	Repeat             WORD
	Reserved           [6]BYTE // For future (set to zero)
	Deprecated         [3]BYTE // RGB values of the tag color, deprecated
	ExtraByte          BYTE    // Extra byte (zero)
}

func parseChunk0x2018(data []byte) ([]Tag, error) {
	r := newChunkReader(data, "tags chunk")

	var numberOfTags WORD
	if err := r.read(&numberOfTags); err != nil {
		return nil, err
	}
	if err := r.skip(8); err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, numberOfTags)
	for range int(numberOfTags) {
		var entry tagEntry
		if err := r.read(&entry); err != nil {
			return nil, err
		}
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		tags = append(tags, Tag{
			FromFrame:          entry.FromFrame,
			ToFrame:            entry.ToFrame,
			AnimationDirection: LoopAnimationDirection(entry.AnimationDirection),
			Repeat:             entry.Repeat,
			Name:               name,
		})
	}

	return tags, nil
}
