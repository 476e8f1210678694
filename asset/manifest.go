package asset

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/retroblast-engine/aseanim/anim"
	"github.com/retroblast-engine/aseanim/atlas"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned for manifests that do not describe a
// usable asset.
var ErrInvalidManifest = errors.New("asset: invalid manifest")

// Manifest describes a packed asset next to its atlas image.
type Manifest struct {
	Name   string       `yaml:"name,omitempty"`
	Image  string       `yaml:"image,omitempty"` // Atlas image file, relative to the manifest
	Width  int          `yaml:"width"`
	Height int          `yaml:"height"`
	Frames []FrameEntry `yaml:"frames"`
	Tags   []TagEntry   `yaml:"tags,omitempty"`
	Slices []SliceEntry `yaml:"slices,omitempty"`
}

// Rect is a rectangle in manifest form.
type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

func rectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func (r Rect) rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Point is a point in manifest form.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type FrameEntry struct {
	Region   Rect `yaml:"region"`
	Duration int  `yaml:"duration"` // Milliseconds
}

type TagEntry struct {
	Name      string `yaml:"name"`
	From      int    `yaml:"from"`
	To        int    `yaml:"to"`
	Direction string `yaml:"direction"`
	Repeat    int    `yaml:"repeat,omitempty"`
}

type SliceEntry struct {
	Name string          `yaml:"name"`
	Keys []SliceKeyEntry `yaml:"keys"`
}

type SliceKeyEntry struct {
	Frame  int    `yaml:"frame"`
	Bounds Rect   `yaml:"bounds"`
	Center *Rect  `yaml:"center,omitempty"`
	Pivot  *Point `yaml:"pivot,omitempty"`
}

// ParseManifest reads a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Bytes returns the YAML form of m.
func (m *Manifest) Bytes() ([]byte, error) {
	return yaml.Marshal(m)
}

// Manifest describes a under name, with its atlas stored in imagePath.
func (a *Asset) Manifest(name, imagePath string) *Manifest {
	w, h := a.Info.Dimensions()
	m := &Manifest{
		Name:   name,
		Image:  imagePath,
		Width:  w,
		Height: h,
		Frames: make([]FrameEntry, a.Info.FrameCount()),
	}

	for i := range m.Frames {
		m.Frames[i] = FrameEntry{
			Region:   rectOf(a.Region(i)),
			Duration: int(a.Info.Duration(i) / time.Millisecond),
		}
	}

	for _, t := range a.Info.Tags() {
		m.Tags = append(m.Tags, TagEntry{
			Name:      t.Name,
			From:      t.From,
			To:        t.To,
			Direction: t.Direction.String(),
			Repeat:    t.Repeat,
		})
	}

	for _, slice := range a.Info.SliceNames() {
		keys, _ := a.Info.Slice(slice)
		entry := SliceEntry{Name: slice}
		for _, k := range keys {
			ke := SliceKeyEntry{Frame: k.Frame, Bounds: rectOf(k.Bounds)}
			if k.Center != nil {
				c := rectOf(*k.Center)
				ke.Center = &c
			}
			if k.Pivot != nil {
				ke.Pivot = &Point{X: k.Pivot.X, Y: k.Pivot.Y}
			}
			entry.Keys = append(entry.Keys, ke)
		}
		m.Slices = append(m.Slices, entry)
	}

	return m
}

// FromManifest rebuilds an asset from a manifest and its atlas image.
// Frames with the same region share one atlas slot.
func FromManifest(m *Manifest, img image.Image) (*Asset, error) {
	if len(m.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidManifest)
	}

	cfg := anim.InfoConfig{
		Width:     m.Width,
		Height:    m.Height,
		Durations: make([]time.Duration, len(m.Frames)),
		Slices:    make(map[string][]anim.SliceKey, len(m.Slices)),
	}

	layout := &atlas.Layout{
		Image: toNRGBA(img),
		Slots: make([]int, len(m.Frames)),
	}
	bounds := layout.Image.Bounds()
	slots := make(map[image.Rectangle]int)

	for i, f := range m.Frames {
		cfg.Durations[i] = time.Duration(f.Duration) * time.Millisecond

		r := f.Region.rectangle()
		if r.Empty() || !r.In(bounds) {
			return nil, fmt.Errorf("%w: frame %d region %v outside atlas %v", ErrInvalidManifest, i, r, bounds)
		}
		slot, ok := slots[r]
		if !ok {
			slot = len(layout.Regions)
			slots[r] = slot
			layout.Regions = append(layout.Regions, r)
		}
		layout.Slots[i] = slot
	}

	for _, t := range m.Tags {
		dir, err := anim.ParseDirection(t.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: tag %q: %w", ErrInvalidManifest, t.Name, err)
		}
		cfg.Tags = append(cfg.Tags, anim.Tag{Name: t.Name, From: t.From, To: t.To, Direction: dir, Repeat: t.Repeat})
	}

	for _, s := range m.Slices {
		keys := make([]anim.SliceKey, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = anim.SliceKey{Frame: k.Frame, Bounds: k.Bounds.rectangle()}
			if k.Center != nil {
				c := k.Center.rectangle()
				keys[i].Center = &c
			}
			if k.Pivot != nil {
				p := image.Pt(k.Pivot.X, k.Pivot.Y)
				keys[i].Pivot = &p
			}
		}
		cfg.Slices[s.Name] = keys
	}

	info, err := anim.NewInfo(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return &Asset{Info: info, Layout: layout}, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if img, ok := src.(*image.NRGBA); ok {
		return img
	}
	b := src.Bounds()
	img := image.NewNRGBA(b)
	draw.Draw(img, b, src, b.Min, draw.Src)
	return img
}
