package anim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"time"
)

// ErrInvalidInfo is returned by NewInfo when the metadata breaks one of the
// invariants playback relies on.
var ErrInvalidInfo = errors.New("anim: invalid animation info")

// Tag is a named, inclusive frame range with a playback direction.
type Tag struct {
	Name      string
	From      int // First frame of the tag
	To        int // Last frame of the tag (inclusive)
	Direction Direction
	Repeat    int // Repeat N times, 0 means unspecified. Kept for hosts, playback loops forever.
}

// Len returns the number of frames in the tag.
func (t Tag) Len() int {
	return t.To - t.From + 1
}

// Contains reports whether frame lies within the tag range.
func (t Tag) Contains(frame int) bool {
	return frame >= t.From && frame <= t.To
}

// SliceKey is the geometry of a slice starting at Frame and valid until the
// next key of the same slice.
type SliceKey struct {
	Frame  int
	Bounds image.Rectangle
	Center *image.Rectangle // 9-patch center relative to Bounds, nil if not set
	Pivot  *image.Point     // Pivot relative to Bounds, nil if not set
}

// InfoConfig holds the raw values NewInfo validates.
type InfoConfig struct {
	Width, Height    int
	Durations        []time.Duration // One per frame
	Tags             []Tag           // In file order
	Slices           map[string][]SliceKey
	Palette          color.Palette
	TransparentIndex uint8
}

// Info is the read-only metadata of a loaded sprite. It never changes after
// NewInfo returns and is safe for concurrent use by any number of States.
type Info struct {
	width, height    int
	durations        []time.Duration
	tags             map[string]Tag
	tagOrder         []string
	slices           map[string][]SliceKey
	palette          color.Palette
	transparentIndex uint8
}

// NewInfo validates cfg and returns the immutable Info built from a copy of it.
func NewInfo(cfg InfoConfig) (*Info, error) {
	if len(cfg.Durations) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidInfo)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d", ErrInvalidInfo, cfg.Width, cfg.Height)
	}
	for i, d := range cfg.Durations {
		if d <= 0 {
			return nil, fmt.Errorf("%w: frame %d has duration %v", ErrInvalidInfo, i, d)
		}
	}

	info := &Info{
		width:            cfg.Width,
		height:           cfg.Height,
		durations:        slices.Clone(cfg.Durations),
		tags:             make(map[string]Tag, len(cfg.Tags)),
		tagOrder:         make([]string, 0, len(cfg.Tags)),
		slices:           make(map[string][]SliceKey, len(cfg.Slices)),
		palette:          slices.Clone(cfg.Palette),
		transparentIndex: cfg.TransparentIndex,
	}

	last := len(cfg.Durations) - 1
	for _, tag := range cfg.Tags {
		if tag.Name == "" {
			return nil, fmt.Errorf("%w: tag with empty name", ErrInvalidInfo)
		}
		if _, dup := info.tags[tag.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate tag %q", ErrInvalidInfo, tag.Name)
		}
		if tag.From < 0 || tag.From > tag.To || tag.To > last {
			return nil, fmt.Errorf("%w: tag %q range [%d, %d] outside [0, %d]",
				ErrInvalidInfo, tag.Name, tag.From, tag.To, last)
		}
		info.tags[tag.Name] = tag
		info.tagOrder = append(info.tagOrder, tag.Name)
	}

	for name, keys := range cfg.Slices {
		keys = slices.Clone(keys)
		slices.SortStableFunc(keys, func(a, b SliceKey) int { return a.Frame - b.Frame })
		info.slices[name] = keys
	}

	return info, nil
}

// Dimensions returns the size of a single frame in pixels.
func (i *Info) Dimensions() (width, height int) {
	return i.width, i.height
}

// FrameCount returns the number of frames, always at least 1.
func (i *Info) FrameCount() int {
	return len(i.durations)
}

// Duration returns how long frame is displayed.
func (i *Info) Duration(frame int) time.Duration {
	return i.durations[frame]
}

// Durations returns a copy of all frame durations.
func (i *Info) Durations() []time.Duration {
	return slices.Clone(i.durations)
}

// Tag returns the tag called name.
func (i *Info) Tag(name string) (Tag, bool) {
	t, ok := i.tags[name]
	return t, ok
}

// TagNames returns the tag names in file order.
func (i *Info) TagNames() []string {
	return slices.Clone(i.tagOrder)
}

// Tags returns all tags in file order.
func (i *Info) Tags() []Tag {
	tags := make([]Tag, 0, len(i.tagOrder))
	for _, name := range i.tagOrder {
		tags = append(tags, i.tags[name])
	}
	return tags
}

// Slice returns the keys of the slice called name.
func (i *Info) Slice(name string) ([]SliceKey, bool) {
	keys, ok := i.slices[name]
	return slices.Clone(keys), ok
}

// SliceNames returns the slice names sorted alphabetically.
func (i *Info) SliceNames() []string {
	names := make([]string, 0, len(i.slices))
	for name := range i.slices {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SliceAt returns the key of slice name that applies to frame.
func (i *Info) SliceAt(name string, frame int) (SliceKey, bool) {
	var (
		found SliceKey
		ok    bool
	)
	for _, key := range i.slices[name] {
		if key.Frame > frame {
			break
		}
		found, ok = key, true
	}
	return found, ok
}

// Palette returns the sprite palette, nil for sprites without one.
func (i *Info) Palette() color.Palette {
	return slices.Clone(i.palette)
}

// TransparentIndex is the palette entry that is transparent in non-background
// layers of indexed sprites.
func (i *Info) TransparentIndex() uint8 {
	return i.transparentIndex
}
