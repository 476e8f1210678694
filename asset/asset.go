// Package asset ties decoding and packing together into a loaded sprite: its
// playback metadata and its atlas. An Asset only exists once both steps have
// succeeded, so players are never built against a half-loaded sprite.
package asset

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log"
	"path/filepath"
	"slices"
	"strings"

	"github.com/retroblast-engine/aseanim/anim"
	"github.com/retroblast-engine/aseanim/aseprite"
	"github.com/retroblast-engine/aseanim/atlas"
)

// Extensions lists the file extensions Aseprite files are recognised by.
var Extensions = []string{".ase", ".aseprite"}

// ErrUnknownExtension is returned for paths without one of Extensions.
var ErrUnknownExtension = errors.New("asset: not an aseprite file")

// Supported reports whether path has one of Extensions, ignoring case.
func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Asset is a decoded and packed sprite. It is read-only once loaded and can
// back any number of players.
type Asset struct {
	Info   *anim.Info
	Layout *atlas.Layout

	// Warnings lists recoverable problems found in the source file.
	Warnings []string
}

// Load decodes an Aseprite file and packs its frames with opts.
func Load(data []byte, opts ...atlas.Option) (*Asset, error) {
	f, err := aseprite.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("asset: decode: %w", err)
	}
	info, err := f.Info()
	if err != nil {
		return nil, fmt.Errorf("asset: decode: %w", err)
	}

	images := f.Images()
	frames := make([]image.Image, len(images))
	for i, img := range images {
		frames[i] = img
	}
	layout, err := atlas.Pack(frames, opts...)
	if err != nil {
		return nil, fmt.Errorf("asset: pack: %w", err)
	}

	return &Asset{Info: info, Layout: layout, Warnings: f.Warnings}, nil
}

// LoadFS reads name from fsys and loads it.
func LoadFS(fsys fs.FS, name string, opts ...atlas.Option) (*Asset, error) {
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	a, err := Load(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

// Region returns the atlas rectangle showing frame.
func (a *Asset) Region(frame int) image.Rectangle {
	return a.Layout.Region(frame)
}

// NewPlayer starts playing tag, logging diagnostics to logger.
func (a *Asset) NewPlayer(tag string, logger *log.Logger) *anim.Player {
	return anim.NewPlayer(a.Info, tag, logger)
}
