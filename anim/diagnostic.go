package anim

import "fmt"

// DiagnosticKind classifies recoverable playback problems.
type DiagnosticKind int

const (
	// UnknownTag means a tag name was not found in the Info. Playback falls
	// back to looping over every frame.
	UnknownTag DiagnosticKind = iota + 1
	// UnknownDirection means the active tag has a direction code playback
	// does not understand. The frame is left unchanged.
	UnknownDirection
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnknownTag:
		return "unknown tag"
	case UnknownDirection:
		return "unknown direction"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(k))
	}
}

// Diagnostic describes a recoverable problem met while playing. The state
// stays well defined whenever one is returned.
type Diagnostic struct {
	Kind      DiagnosticKind
	Tag       string
	Direction Direction // Only set for UnknownDirection
	Frame     int       // Current frame when the diagnostic was raised
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case UnknownTag:
		return fmt.Sprintf("tag %q wasn't found, looping over all frames", d.Tag)
	case UnknownDirection:
		return fmt.Sprintf("tag %q has %v, frame %d left unchanged", d.Tag, d.Direction, d.Frame)
	default:
		return fmt.Sprintf("%v on tag %q at frame %d", d.Kind, d.Tag, d.Frame)
	}
}
