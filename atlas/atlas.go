// Package atlas packs frame images into a single texture and keeps the map
// from every frame index to its region in that texture.
package atlas

import (
	"errors"
	"fmt"
)

// DefaultMaxSize is the largest atlas side used when no WithMaxSize option
// is given.
const DefaultMaxSize = 4096

var (
	ErrEmptyInput       = errors.New("atlas: no frames to pack")
	ErrCapacityExceeded = errors.New("atlas: frames do not fit in the maximum atlas size")
)

// Strategy selects how frames are laid out in the atlas.
type Strategy int

const (
	// Grid places frames row by row in near-square cells of the largest
	// frame size.
	Grid Strategy = iota
	// Strip places every frame left to right in a single row.
	Strip
	// Skyline packs frames of different sizes tightly, tallest first.
	Skyline
)

var strategyNames = map[Strategy]string{
	Grid:    "grid",
	Strip:   "strip",
	Skyline: "skyline",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the strategy called name.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("atlas: unknown strategy %q", name)
}

type config struct {
	strategy Strategy
	padding  int
	maxSize  int
	dedupe   bool
}

// Option configures Pack.
type Option func(*config)

// WithStrategy sets the layout strategy. The default is Grid.
func WithStrategy(s Strategy) Option {
	return func(c *config) { c.strategy = s }
}

// WithPadding leaves px transparent pixels between neighbouring regions.
func WithPadding(px int) Option {
	return func(c *config) { c.padding = max(px, 0) }
}

// WithMaxSize bounds both sides of the atlas. Values below 1 restore
// DefaultMaxSize.
func WithMaxSize(px int) Option {
	return func(c *config) {
		if px < 1 {
			px = DefaultMaxSize
		}
		c.maxSize = px
	}
}

// WithDedupe makes pixel-identical frames share one region.
func WithDedupe(on bool) Option {
	return func(c *config) { c.dedupe = on }
}

func newConfig(opts []Option) config {
	c := config{strategy: Grid, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
