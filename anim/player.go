package anim

import (
	"log"
	"time"
)

// Player binds a State to the Info it plays and logs playback diagnostics.
// It is what a host keeps per animated entity.
type Player struct {
	info   *Info
	state  State
	logger *log.Logger
}

// NewPlayer starts playing tag. A nil logger logs to log.Default().
func NewPlayer(info *Info, tag string, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.Default()
	}
	p := &Player{info: info, logger: logger}
	var diags []Diagnostic
	p.state, diags = Start(info, tag)
	p.report(diags)
	return p
}

func (p *Player) report(diags []Diagnostic) {
	for _, d := range diags {
		p.logger.Printf("anim: %v", d)
	}
}

// Update advances playback by dt and reports whether a step was taken.
func (p *Player) Update(dt time.Duration) bool {
	changed, diags := p.state.Advance(p.info, dt)
	p.report(diags)
	return changed
}

// SetTag restarts playback on tag.
func (p *Player) SetTag(tag string) {
	p.report(p.state.SetTag(p.info, tag))
}

// SwitchTag restarts playback on tag unless it is already the active one.
func (p *Player) SwitchTag(tag string) {
	if tag != p.state.Tag() {
		p.SetTag(tag)
	}
}

// Info returns the metadata being played.
func (p *Player) Info() *Info {
	return p.info
}

// Snapshot returns a copy of the playback state.
func (p *Player) Snapshot() State {
	return p.state
}

// Restore replaces the playback state with a snapshot.
func (p *Player) Restore(s State) {
	p.state = s
}

func (p *Player) Tag() string                     { return p.state.Tag() }
func (p *Player) Frame() int                      { return p.state.Frame() }
func (p *Player) SetFrame(frame int)              { p.state.SetFrame(p.info, frame) }
func (p *Player) SetTagFrame(frame int)           { p.state.SetTagFrame(p.info, frame) }
func (p *Player) TagFrame() (int, bool)           { return p.state.TagFrame(p.info) }
func (p *Player) RemainingTagFrames() (int, bool) { return p.state.RemainingTagFrames(p.info) }
func (p *Player) FrameFinished(dt time.Duration) bool {
	return p.state.FrameFinished(p.info, dt)
}
func (p *Player) FrameDuration() time.Duration { return p.state.FrameDuration(p.info) }
func (p *Player) Elapsed() time.Duration       { return p.state.Elapsed() }
func (p *Player) Play()                        { p.state.Play() }
func (p *Player) Pause()                       { p.state.Pause() }
func (p *Player) Toggle()                      { p.state.Toggle() }
func (p *Player) Playing() bool                { return p.state.Playing() }
