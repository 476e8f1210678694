package aseprite

import (
	"image"
	"image/color"
	"slices"
)

// compose flattens every frame into f.images.
func (f *File) compose() error {
	converted := make(map[*Cel]*image.NRGBA)
	f.images = make([]*image.NRGBA, len(f.Frames))

	for i := range f.Frames {
		canvas := image.NewNRGBA(image.Rect(0, 0, int(f.Header.Width), int(f.Header.Height)))

		cels, err := f.resolveCels(i)
		if err != nil {
			return err
		}

		for _, c := range cels {
			layer := f.Layers[c.LayerIndex]
			if !renders(f.Layers, int(c.LayerIndex)) {
				continue
			}

			blend, err := blender(layer.BlendMode)
			if err != nil {
				return err
			}

			opacity := int(c.Opacity)
			if f.Header.IsLayerOpacityValid() {
				opacity = mulUn8(opacity, int(layer.Opacity))
			}
			if opacity == 0 {
				continue
			}

			src, ok := converted[c.source]
			if !ok {
				src, err = f.celImage(c.source, layer)
				if err != nil {
					return err
				}
				converted[c.source] = src
			}

			drawCel(canvas, src, int(c.source.XPosition), int(c.source.YPosition), blend, opacity)
		}

		f.images[i] = canvas
	}

	return nil
}

// placedCel is a cel of one frame with its linked data resolved.
type placedCel struct {
	LayerIndex WORD
	ZIndex     SHORT
	Opacity    BYTE
	order      int
	source     *Cel // Cel holding the pixels and the position
}

// resolveCels follows the links of frame i and sorts its cels in drawing
// order. Cels with equal order keep the one with the lower z-index first.
func (f *File) resolveCels(i int) ([]placedCel, error) {
	frameCels := f.Frames[i].Cels
	cels := make([]placedCel, 0, len(frameCels))

	for _, c := range frameCels {
		if int(c.LayerIndex) >= len(f.Layers) {
			return nil, malformed("frame %d: cel references layer %d of %d", i, c.LayerIndex, len(f.Layers))
		}

		source := c
		if c.CelType == LinkedCelData {
			source = f.linkedCel(c)
			if source == nil {
				return nil, malformed("frame %d: cel on layer %d links missing frame %d",
					i, c.LayerIndex, c.FramePosition)
			}
		}

		cels = append(cels, placedCel{
			LayerIndex: c.LayerIndex,
			ZIndex:     c.ZIndex,
			Opacity:    source.Opacity,
			order:      c.order(),
			source:     source,
		})
	}

	slices.SortStableFunc(cels, func(a, b placedCel) int {
		if a.order != b.order {
			return a.order - b.order
		}
		return int(a.ZIndex) - int(b.ZIndex)
	})

	return cels, nil
}

// linkedCel returns the cel a linked cel points to, nil if there is none.
func (f *File) linkedCel(c *Cel) *Cel {
	frame := int(c.FramePosition)
	if frame >= len(f.Frames) {
		return nil
	}
	for _, other := range f.Frames[frame].Cels {
		if other.LayerIndex == c.LayerIndex && other.CelType != LinkedCelData {
			return other
		}
	}
	return nil
}

// celImage converts the pixels of c to a straight-alpha image.
func (f *File) celImage(c *Cel, layer *Layer) (*image.NRGBA, error) {
	if c.CelType == CompressedTilemapData {
		return f.tilemapImage(c, layer)
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(c.Width), int(c.Height)))
	if err := f.convertPixels(img.Pix, c.Pixels, layer.Background()); err != nil {
		return nil, err
	}
	return img, nil
}

func (f *File) tilemapImage(c *Cel, layer *Layer) (*image.NRGBA, error) {
	ts, ok := f.Tilesets[layer.TilesetIndex]
	if !ok {
		return nil, malformed("layer %q uses missing tileset %d", layer.Name, layer.TilesetIndex)
	}

	tm := c.Tilemap
	tw, th := ts.TileWidth, ts.TileHeight
	if _, err := imageSize("tilemap image", 4, tm.Columns, tw, tm.Rows, th); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, tm.Columns*tw, tm.Rows*th))
	tile := image.NewNRGBA(image.Rect(0, 0, tw, th))
	bpp := f.Header.BytesPerPixel()

	for i, t := range tm.Tiles {
		if t.ID == 0 && ts.Flags&FlagTileIDZeroAsEmptyTile != 0 {
			continue
		}
		if ts.Flags&FlagTileIDZeroAsEmptyTile == 0 && t.ID >= ts.NumberOfTiles {
			// Old files mark empty tiles with every ID bit set.
			continue
		}

		pixels, err := ts.tilePixels(t.ID, bpp)
		if err != nil {
			return nil, err
		}
		if err := f.convertPixels(tile.Pix, pixels, layer.Background()); err != nil {
			return nil, err
		}

		ox, oy := (i%tm.Columns)*tw, (i/tm.Columns)*th
		for y := range th {
			for x := range tw {
				sx, sy := x, y
				if t.DiagonalFlip {
					sx, sy = sy, sx
				}
				if t.XFlip {
					sx = tw - 1 - sx
				}
				if t.YFlip {
					sy = th - 1 - sy
				}
				if sx < 0 || sx >= tw || sy < 0 || sy >= th {
					continue
				}
				copy(img.Pix[img.PixOffset(ox+x, oy+y):][:4], tile.Pix[tile.PixOffset(sx, sy):][:4])
			}
		}
	}

	return img, nil
}

// convertPixels writes src, in the file color depth, to dst as NRGBA.
func (f *File) convertPixels(dst []uint8, src []BYTE, background bool) error {
	switch f.Header.ColorDepth {
	case ColorDepthRGBA:
		copy(dst, src)

	case ColorDepthGrayscale:
		for i := 0; i+1 < len(src); i += 2 {
			v, a := src[i], src[i+1]
			dst[i*2], dst[i*2+1], dst[i*2+2], dst[i*2+3] = v, v, v, a
		}

	case ColorDepthIndexed:
		transparent := f.Header.TransparentIdx
		for i, idx := range src {
			var px color.NRGBA
			if background || idx != transparent {
				// Indices outside the palette stay transparent.
				if int(idx) < len(f.Palette) {
					px = color.NRGBAModel.Convert(f.Palette[idx]).(color.NRGBA)
				}
			}
			dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = px.R, px.G, px.B, px.A
		}

	default:
		return unsupported("color depth %d", f.Header.ColorDepth)
	}
	return nil
}

// drawCel composites src at (x, y) on dst, clipped to the canvas.
func drawCel(dst, src *image.NRGBA, x, y int, blend func(dst, src [4]uint8, opacity int) [4]uint8, opacity int) {
	area := src.Bounds().Add(image.Pt(x, y)).Intersect(dst.Bounds())
	for dy := area.Min.Y; dy < area.Max.Y; dy++ {
		for dx := area.Min.X; dx < area.Max.X; dx++ {
			si := src.PixOffset(dx-x, dy-y)
			di := dst.PixOffset(dx, dy)

			var s, d [4]uint8
			copy(s[:], src.Pix[si:si+4])
			copy(d[:], dst.Pix[di:di+4])
			out := blend(d, s, opacity)
			copy(dst.Pix[di:di+4], out[:])
		}
	}
}
