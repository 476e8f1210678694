package anim

import (
	"errors"
	"image"
	"testing"
	"time"
)

func TestNewInfo_Validation(t *testing.T) {
	durations := uniform(4, 100*time.Millisecond)

	tests := []struct {
		name string
		cfg  InfoConfig
	}{
		{"no frames", InfoConfig{Width: 8, Height: 8}},
		{"zero width", InfoConfig{Width: 0, Height: 8, Durations: durations}},
		{"zero duration", InfoConfig{Width: 8, Height: 8, Durations: []time.Duration{time.Second, 0}}},
		{"tag past end", InfoConfig{Width: 8, Height: 8, Durations: durations,
			Tags: []Tag{{Name: "a", From: 2, To: 4}}}},
		{"tag reversed", InfoConfig{Width: 8, Height: 8, Durations: durations,
			Tags: []Tag{{Name: "a", From: 3, To: 1}}}},
		{"tag negative", InfoConfig{Width: 8, Height: 8, Durations: durations,
			Tags: []Tag{{Name: "a", From: -1, To: 1}}}},
		{"duplicate tag", InfoConfig{Width: 8, Height: 8, Durations: durations,
			Tags: []Tag{{Name: "a", From: 0, To: 1}, {Name: "a", From: 2, To: 3}}}},
		{"empty tag name", InfoConfig{Width: 8, Height: 8, Durations: durations,
			Tags: []Tag{{From: 0, To: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewInfo(tt.cfg); !errors.Is(err, ErrInvalidInfo) {
				t.Errorf("Expected ErrInvalidInfo, got %v", err)
			}
		})
	}
}

func TestNewInfo_CopiesInput(t *testing.T) {
	durations := uniform(3, 100*time.Millisecond)
	tags := []Tag{{Name: "b", From: 1, To: 2}, {Name: "a", From: 0, To: 0}}
	info, err := NewInfo(InfoConfig{Width: 8, Height: 4, Durations: durations, Tags: tags})
	if err != nil {
		t.Fatalf("NewInfo: %v", err)
	}

	durations[0] = time.Hour
	tags[0].To = 1
	if info.Duration(0) != 100*time.Millisecond {
		t.Errorf("Expected Info to keep its own durations")
	}
	if tag, _ := info.Tag("b"); tag.To != 2 {
		t.Errorf("Expected Info to keep its own tags")
	}

	if names := info.TagNames(); len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Expected tag names in file order, got %v", names)
	}
	if w, h := info.Dimensions(); w != 8 || h != 4 {
		t.Errorf("Expected 8x4, got %dx%d", w, h)
	}
	if info.FrameCount() != 3 {
		t.Errorf("Expected 3 frames, got %d", info.FrameCount())
	}
}

func TestInfo_SliceAt(t *testing.T) {
	pivot := image.Pt(2, 3)
	info, err := NewInfo(InfoConfig{
		Width: 8, Height: 8,
		Durations: uniform(6, 100*time.Millisecond),
		Slices: map[string][]SliceKey{
			"hitbox": {
				{Frame: 4, Bounds: image.Rect(1, 1, 5, 5)},
				{Frame: 0, Bounds: image.Rect(0, 0, 4, 4), Pivot: &pivot},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewInfo: %v", err)
	}

	key, ok := info.SliceAt("hitbox", 3)
	if !ok || key.Frame != 0 || key.Pivot == nil || *key.Pivot != pivot {
		t.Errorf("Expected key from frame 0 with pivot, got %+v", key)
	}
	key, ok = info.SliceAt("hitbox", 5)
	if !ok || key.Frame != 4 {
		t.Errorf("Expected key from frame 4, got %+v", key)
	}
	if _, ok := info.SliceAt("hurtbox", 0); ok {
		t.Errorf("Expected no key for an unknown slice")
	}
	if names := info.SliceNames(); len(names) != 1 || names[0] != "hitbox" {
		t.Errorf("Expected [hitbox], got %v", names)
	}
}

func TestDirection_String(t *testing.T) {
	for _, d := range []Direction{Forward, Reverse, PingPong, PingPongReverse, Direction(4), Direction(255)} {
		parsed, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", d.String(), err)
		}
		if parsed != d {
			t.Errorf("Expected %v, got %v", d, parsed)
		}
	}
	if Direction(4).Known() {
		t.Errorf("Expected direction 4 to be unknown")
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Errorf("Expected an error for an invalid direction")
	}
}
