// Package ebitensprite draws packed assets with ebiten.
package ebitensprite

import (
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroblast-engine/aseanim/anim"
	"github.com/retroblast-engine/aseanim/asset"
)

// Tick returns the duration of one ebiten update at the current TPS.
func Tick() time.Duration {
	tps := ebiten.TPS()
	if tps <= 0 {
		return time.Second / ebiten.DefaultTPS
	}
	return time.Second / time.Duration(tps)
}

// Sheet is an asset's atlas uploaded as one ebiten image. Frames are
// sub-images of it, so every sprite of a sheet shares one texture.
type Sheet struct {
	asset  *asset.Asset
	image  *ebiten.Image
	frames []*ebiten.Image
}

// NewSheet uploads the atlas of a.
func NewSheet(a *asset.Asset) *Sheet {
	img := ebiten.NewImageFromImage(a.Layout.Image)
	s := &Sheet{
		asset:  a,
		image:  img,
		frames: make([]*ebiten.Image, a.Info.FrameCount()),
	}

	// Frames sharing a slot share a sub-image.
	slots := make(map[int]*ebiten.Image, len(a.Layout.Regions))
	for i := range s.frames {
		slot := a.Layout.Slots[i]
		sub, ok := slots[slot]
		if !ok {
			sub = img.SubImage(a.Layout.Regions[slot]).(*ebiten.Image)
			slots[slot] = sub
		}
		s.frames[i] = sub
	}
	return s
}

// Asset returns the asset the sheet was built from.
func (s *Sheet) Asset() *asset.Asset {
	return s.asset
}

// Image returns the whole atlas.
func (s *Sheet) Image() *ebiten.Image {
	return s.image
}

// Frame returns the image of frame i, or nil outside [0, FrameCount).
func (s *Sheet) Frame(i int) *ebiten.Image {
	if i < 0 || i >= len(s.frames) {
		return nil
	}
	return s.frames[i]
}

// Sprite is one animated instance of a sheet.
type Sprite struct {
	sheet  *Sheet
	player *anim.Player
}

// NewSprite starts playing tag on sheet. Use "" to play all frames.
func (s *Sheet) NewSprite(tag string, logger *log.Logger) *Sprite {
	return &Sprite{
		sheet:  s,
		player: anim.NewPlayer(s.asset.Info, tag, logger),
	}
}

// Player gives access to playback control.
func (s *Sprite) Player() *anim.Player {
	return s.player
}

// Sheet returns the sheet the sprite draws from.
func (s *Sprite) Sheet() *Sheet {
	return s.sheet
}

// Update advances playback by dt. Call it with Tick() from Game.Update for
// real-time playback.
func (s *Sprite) Update(dt time.Duration) bool {
	return s.player.Update(dt)
}

// Image returns the image of the current frame. The frame is read on every
// call, so tag and frame changes show up without waiting for Update.
func (s *Sprite) Image() *ebiten.Image {
	return s.sheet.Frame(s.player.Frame())
}

// Pivot returns the pivot of the slice named after the current tag at the
// current frame, relative to the frame's top-left corner. Sprites without
// such a slice pivot on their top-left corner.
func (s *Sprite) Pivot() image.Point {
	key, ok := s.sheet.asset.Info.SliceAt(s.player.Tag(), s.player.Frame())
	if !ok || key.Pivot == nil {
		return image.Point{}
	}
	return key.Bounds.Min.Add(*key.Pivot)
}

// Draw draws the current frame onto dst. A nil op draws at the origin.
func (s *Sprite) Draw(dst *ebiten.Image, op *ebiten.DrawImageOptions) {
	if op == nil {
		op = &ebiten.DrawImageOptions{}
	}
	dst.DrawImage(s.Image(), op)
}
