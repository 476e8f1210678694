package anim

import (
	"math"
	"time"
)

// State is the playback position of one animated instance. It is a plain
// value, copying it takes a snapshot, and two States compare equal exactly
// when they will behave identically against the same Info.
//
// A State must only be driven by one owner at a time. The Info it is used
// with must be the one it was started with.
type State struct {
	tag     string        // Active tag, "" loops over every frame
	frame   int           // Absolute frame index
	elapsed time.Duration // Time spent in the current frame
	forward bool          // Which leg of a ping-pong is active
	playing bool
}

// Start returns a playing State seeded on tag. An empty tag loops over every
// frame. An unknown tag does the same and is reported.
func Start(info *Info, tag string) (State, []Diagnostic) {
	s := State{playing: true}
	diags := s.SetTag(info, tag)
	return s, diags
}

// SetTag switches to tag and reseeds the position exactly like Start does.
// The play/pause flag is kept.
func (s *State) SetTag(info *Info, tag string) []Diagnostic {
	s.elapsed = 0
	s.tag = ""
	s.frame = 0
	s.forward = true

	if tag == "" {
		return nil
	}
	t, ok := info.Tag(tag)
	if !ok {
		return []Diagnostic{{Kind: UnknownTag, Tag: tag}}
	}

	s.tag = tag
	if t.Direction.forwardSeed() {
		s.frame = t.From
	} else {
		s.frame = t.To
		s.forward = false
	}
	return nil
}

// Advance adds dt to the time spent in the current frame and steps through
// as many frames as that time covers. It reports whether at least one step
// was taken. A zero or negative dt never steps.
func (s *State) Advance(info *Info, dt time.Duration) (bool, []Diagnostic) {
	if !s.playing {
		return false, nil
	}

	var diags []Diagnostic
	s.frame = clamp(s.frame, 0, info.FrameCount()-1)

	t, hasTag := info.Tag(s.tag)
	if s.tag != "" && !hasTag {
		diags = append(diags, Diagnostic{Kind: UnknownTag, Tag: s.tag, Frame: s.frame})
		s.tag = ""
		s.forward = true
	}

	if dt > 0 {
		if s.elapsed > math.MaxInt64-dt {
			s.elapsed = math.MaxInt64
		} else {
			s.elapsed += dt
		}
	}

	if hasTag && !t.Direction.Known() {
		if d := info.Duration(s.frame); s.elapsed >= d {
			s.elapsed %= d
			diags = append(diags, Diagnostic{
				Kind:      UnknownDirection,
				Tag:       s.tag,
				Direction: t.Direction,
				Frame:     s.frame,
			})
		}
		return false, diags
	}

	steps := 0
	for {
		d := info.Duration(s.frame)
		if s.elapsed < d {
			break
		}
		s.elapsed -= d
		if hasTag {
			s.step(t)
		} else {
			s.frame = (s.frame + 1) % info.FrameCount()
		}
		steps++

		// After one step the position is on a periodic orbit, so whole
		// loops can be skipped without changing where playback ends up.
		if steps == 1 && s.elapsed >= info.Duration(s.frame) {
			if c := loopDuration(info, t, hasTag); s.elapsed >= c {
				s.elapsed %= c
			}
		}
	}

	return steps > 0, diags
}

// step applies one step of the tag's direction policy.
func (s *State) step(t Tag) {
	switch t.Direction {
	case Forward:
		if s.frame < t.To {
			s.frame++
		} else {
			s.frame = t.From
		}
	case Reverse:
		if s.frame > t.From {
			s.frame--
		} else {
			s.frame = t.To
		}
	case PingPong, PingPongReverse:
		if s.forward {
			if s.frame < t.To {
				s.frame++
			} else {
				s.forward = false
				s.frame = max(s.frame-1, t.From)
			}
		} else {
			if s.frame > t.From {
				s.frame--
			} else {
				s.forward = true
				s.frame = min(s.frame+1, t.To)
			}
		}
	}
}

// loopDuration is the time one full period of playback takes.
func loopDuration(info *Info, t Tag, hasTag bool) time.Duration {
	var total time.Duration
	if !hasTag {
		for i := range info.FrameCount() {
			total += info.Duration(i)
		}
		return total
	}

	switch t.Direction {
	case PingPong, PingPongReverse:
		if t.Len() == 1 {
			return 2 * info.Duration(t.From)
		}
		total = info.Duration(t.From) + info.Duration(t.To)
		for i := t.From + 1; i < t.To; i++ {
			total += 2 * info.Duration(i)
		}
	default:
		for i := t.From; i <= t.To; i++ {
			total += info.Duration(i)
		}
	}
	return total
}

// FrameFinished reports whether advancing by dt would reach or pass the end
// of the current frame. The state is not modified.
func (s *State) FrameFinished(info *Info, dt time.Duration) bool {
	return info.Duration(s.frame)-s.elapsed <= dt
}

// Frame returns the absolute index of the current frame.
func (s *State) Frame() int {
	return s.frame
}

// SetFrame moves to an absolute frame. The value is clamped into the active
// tag, or into the sprite when no tag is active. Time spent in the frame is
// reset.
func (s *State) SetFrame(info *Info, frame int) {
	lo, hi := 0, info.FrameCount()-1
	if t, ok := info.Tag(s.tag); ok {
		lo, hi = t.From, t.To
	}
	s.frame = clamp(frame, lo, hi)
	s.elapsed = 0
}

// TagFrame returns the current frame relative to the start of the active tag.
// It returns 0, false when no tag is active.
func (s *State) TagFrame(info *Info) (int, bool) {
	t, ok := info.Tag(s.tag)
	if !ok {
		return 0, false
	}
	return max(s.frame-t.From, 0), true
}

// SetTagFrame moves to a frame relative to the start of the active tag,
// clamped to the tag. Without a tag it behaves like SetFrame.
func (s *State) SetTagFrame(info *Info, frame int) {
	t, ok := info.Tag(s.tag)
	if !ok {
		s.SetFrame(info, frame)
		return
	}
	s.SetFrame(info, t.From+max(frame, 0))
}

// RemainingTagFrames returns how many frames follow the current one before
// the end of the active tag. It is 0 on the last frame.
func (s *State) RemainingTagFrames(info *Info) (int, bool) {
	t, ok := info.Tag(s.tag)
	if !ok {
		return 0, false
	}
	return max(t.To-s.frame, 0), true
}

// FrameDuration returns how long the current frame is displayed.
func (s *State) FrameDuration(info *Info) time.Duration {
	return info.Duration(s.frame)
}

// Elapsed returns the time spent in the current frame.
func (s *State) Elapsed() time.Duration {
	return s.elapsed
}

// Tag returns the active tag name, "" when looping over every frame.
func (s *State) Tag() string {
	return s.tag
}

// Forward reports whether playback is on the forward leg.
func (s *State) Forward() bool {
	return s.forward
}

// Play starts or resumes playback.
func (s *State) Play() {
	s.playing = true
}

// Pause stops playback without touching the position.
func (s *State) Pause() {
	s.playing = false
}

// Toggle switches between playing and paused.
func (s *State) Toggle() {
	s.playing = !s.playing
}

// Playing reports whether the state advances.
func (s *State) Playing() bool {
	return s.playing
}

// Paused reports whether the state is paused.
func (s *State) Paused() bool {
	return !s.playing
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
