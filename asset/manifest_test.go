package asset

import (
	"errors"
	"image"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/retroblast-engine/aseanim/anim"
	"github.com/retroblast-engine/aseanim/atlas"
)

func TestManifestRoundTrip(t *testing.T) {
	data := fixture([]uint16{100, 120, 140, 160},
		fixtureTag{name: "walk", from: 0, to: 2, direction: 1},
		fixtureTag{name: "odd", from: 3, to: 3, direction: 9},
	)
	a, err := Load(data, atlas.WithPadding(1))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out, err := a.Manifest("hero", "hero.png").Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !strings.Contains(string(out), "direction: unknown(9)") {
		t.Errorf("Expected the unknown direction to be written as is:\n%s", out)
	}

	m, err := ParseManifest(out)
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if m.Name != "hero" || m.Image != "hero.png" {
		t.Errorf("Expected name hero and image hero.png, got %q and %q", m.Name, m.Image)
	}

	b, err := FromManifest(m, a.Layout.Image)
	if err != nil {
		t.Fatalf("FromManifest failed: %v", err)
	}

	if !reflect.DeepEqual(a.Info.Durations(), b.Info.Durations()) {
		t.Errorf("Expected durations %v, got %v", a.Info.Durations(), b.Info.Durations())
	}
	if !reflect.DeepEqual(a.Info.Tags(), b.Info.Tags()) {
		t.Errorf("Expected tags %+v, got %+v", a.Info.Tags(), b.Info.Tags())
	}
	for i := range a.Info.FrameCount() {
		if a.Region(i) != b.Region(i) {
			t.Errorf("Frame %d: expected region %v, got %v", i, a.Region(i), b.Region(i))
		}
	}

	odd, _ := b.Info.Tag("odd")
	if odd.Direction.Known() || odd.Direction.Raw() != 9 {
		t.Errorf("Expected raw direction 9, got %v", odd.Direction)
	}
}

func TestManifestSlices(t *testing.T) {
	center := image.Rect(1, 1, 2, 2)
	pivot := image.Pt(1, 0)
	info, err := anim.NewInfo(anim.InfoConfig{
		Width:     2,
		Height:    2,
		Durations: []time.Duration{100 * time.Millisecond},
		Slices: map[string][]anim.SliceKey{
			"hit": {{Frame: 0, Bounds: image.Rect(0, 0, 2, 2), Center: &center, Pivot: &pivot}},
		},
	})
	if err != nil {
		t.Fatalf("NewInfo failed: %v", err)
	}
	layout, err := atlas.Pack([]image.Image{image.NewNRGBA(image.Rect(0, 0, 2, 2))})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	a := &Asset{Info: info, Layout: layout}

	b, err := FromManifest(a.Manifest("", ""), layout.Image)
	if err != nil {
		t.Fatalf("FromManifest failed: %v", err)
	}
	key, ok := b.Info.SliceAt("hit", 0)
	if !ok {
		t.Fatal("Expected slice hit")
	}
	if key.Center == nil || *key.Center != center || key.Pivot == nil || *key.Pivot != pivot {
		t.Errorf("Expected center %v and pivot %v, got %v and %v", center, pivot, key.Center, key.Pivot)
	}
}

func TestFromManifestSharedRegions(t *testing.T) {
	m := &Manifest{
		Width:  2,
		Height: 2,
		Frames: []FrameEntry{
			{Region: Rect{0, 0, 2, 2}, Duration: 100},
			{Region: Rect{2, 0, 2, 2}, Duration: 100},
			{Region: Rect{0, 0, 2, 2}, Duration: 100},
		},
	}
	a, err := FromManifest(m, image.NewNRGBA(image.Rect(0, 0, 4, 2)))
	if err != nil {
		t.Fatalf("FromManifest failed: %v", err)
	}
	if want := []int{0, 1, 0}; !reflect.DeepEqual(a.Layout.Slots, want) {
		t.Errorf("Expected slots %v, got %v", want, a.Layout.Slots)
	}
}

func TestFromManifestInvalid(t *testing.T) {
	atlasImage := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	frame := FrameEntry{Region: Rect{0, 0, 2, 2}, Duration: 100}

	tests := []struct {
		name string
		m    Manifest
	}{
		{"no frames", Manifest{Width: 2, Height: 2}},
		{"region outside atlas", Manifest{Width: 2, Height: 2, Frames: []FrameEntry{{Region: Rect{3, 3, 2, 2}, Duration: 100}}}},
		{"zero duration", Manifest{Width: 2, Height: 2, Frames: []FrameEntry{{Region: Rect{0, 0, 2, 2}}}}},
		{"bad direction", Manifest{Width: 2, Height: 2, Frames: []FrameEntry{frame},
			Tags: []TagEntry{{Name: "x", Direction: "sideways"}}}},
		{"tag out of range", Manifest{Width: 2, Height: 2, Frames: []FrameEntry{frame},
			Tags: []TagEntry{{Name: "x", To: 4, Direction: "forward"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromManifest(&tt.m, atlasImage); !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("Expected ErrInvalidManifest, got %v", err)
			}
		})
	}
}

func TestParseManifestInvalid(t *testing.T) {
	if _, err := ParseManifest([]byte("frames: [")); !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("Expected ErrInvalidManifest, got %v", err)
	}
}
