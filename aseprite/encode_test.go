package aseprite

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"image/color"
)

// Helpers that build Aseprite files in memory for the tests.

type testChunk struct {
	typ  WORD
	data []byte
}

type testFrame struct {
	duration WORD
	chunks   []testChunk
}

type testFile struct {
	width, height WORD
	depth         WORD
	flags         DWORD
	speed         WORD
	transparent   BYTE
	frames        []testFrame
}

func newTestFile(w, h int, frames ...testFrame) testFile {
	return testFile{
		width:  WORD(w),
		height: WORD(h),
		depth:  ColorDepthRGBA,
		flags:  HeaderFlagLayerOpacityValid,
		frames: frames,
	}
}

func (tf testFile) bytes() []byte {
	var body bytes.Buffer
	for _, fr := range tf.frames {
		var chunks bytes.Buffer
		for _, c := range fr.chunks {
			put(&chunks, DWORD(chunkHeaderSize+len(c.data)), c.typ)
			chunks.Write(c.data)
		}
		put(&body, FrameHeader{
			BytesInFrame:  DWORD(frameHeaderSize + chunks.Len()),
			MagicNumber:   MagicNumberFrame,
			OldChunkCount: WORD(len(fr.chunks)),
			FrameDuration: fr.duration,
			NewChunkCount: DWORD(len(fr.chunks)),
		})
		body.Write(chunks.Bytes())
	}

	var out bytes.Buffer
	put(&out, Header{
		FileSize:          DWORD(headerSize + body.Len()),
		MagicNumberHeader: MagicNumber,
		FrameCount:        WORD(len(tf.frames)),
		Width:             tf.width,
		Height:            tf.height,
		ColorDepth:        tf.depth,
		Flags:             tf.flags,
		Speed:             tf.speed,
		TransparentIdx:    tf.transparent,
	})
	out.Write(body.Bytes())
	return out.Bytes()
}

func frameOf(duration int, chunks ...testChunk) testFrame {
	return testFrame{duration: WORD(duration), chunks: chunks}
}

func put(buf *bytes.Buffer, values ...any) {
	for _, v := range values {
		if s, ok := v.(string); ok {
			_ = binary.Write(buf, binary.LittleEndian, WORD(len(s)))
			buf.WriteString(s)
			continue
		}
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}

type testLayer struct {
	name      string
	flags     WORD
	typ       LayerType
	level     WORD
	blend     BlendMode
	opacity   BYTE
	tilesetID DWORD
}

func layerChunk(l testLayer) testChunk {
	var buf bytes.Buffer
	put(&buf, layerChunkHeader{
		Flags:      l.flags,
		Type:       WORD(l.typ),
		ChildLevel: l.level,
		BlendMode:  WORD(l.blend),
		Opacity:    l.opacity,
	}, l.name)
	if l.typ == TilemapLayer {
		put(&buf, l.tilesetID)
	}
	return testChunk{ChunkLayer, buf.Bytes()}
}

// imageLayer is a visible normal layer at full opacity.
func imageLayer(name string) testChunk {
	return layerChunk(testLayer{name: name, flags: LayerFlagVisible, opacity: 255})
}

type testCel struct {
	layer   WORD
	x, y    SHORT
	opacity BYTE
	zIndex  SHORT
}

func celHeader(c testCel, typ CelDataType) celChunkHeader {
	return celChunkHeader{
		LayerIndex: c.layer,
		XPosition:  c.x,
		YPosition:  c.y,
		Opacity:    c.opacity,
		CelType:    WORD(typ),
		ZIndex:     c.zIndex,
	}
}

func rawCel(c testCel, w, h int, pixels []byte) testChunk {
	var buf bytes.Buffer
	put(&buf, celHeader(c, RawImageData), WORD(w), WORD(h))
	buf.Write(pixels)
	return testChunk{ChunkCel, buf.Bytes()}
}

func zlibCel(c testCel, w, h int, pixels []byte) testChunk {
	var buf bytes.Buffer
	put(&buf, celHeader(c, CompressedImageData), WORD(w), WORD(h))
	buf.Write(deflate(pixels))
	return testChunk{ChunkCel, buf.Bytes()}
}

func linkedCel(c testCel, frame int) testChunk {
	var buf bytes.Buffer
	put(&buf, celHeader(c, LinkedCelData), WORD(frame))
	return testChunk{ChunkCel, buf.Bytes()}
}

func tilemapCel(c testCel, cols, rows int, tiles []DWORD) testChunk {
	var raw bytes.Buffer
	put(&raw, tiles)

	var buf bytes.Buffer
	put(&buf, celHeader(c, CompressedTilemapData), tilemapHeader{
		Width:               WORD(cols),
		Height:              WORD(rows),
		BitsPerTile:         32,
		TileIDBitmask:       0x1fffffff,
		XFlipBitmask:        0x80000000,
		YFlipBitmask:        0x40000000,
		DiagonalFlipBitmask: 0x20000000,
	})
	buf.Write(deflate(raw.Bytes()))
	return testChunk{ChunkCel, buf.Bytes()}
}

// opaque is a full-opacity cel on layer.
func opaque(layer int) testCel {
	return testCel{layer: WORD(layer), opacity: 255}
}

func tagsChunk(tags ...Tag) testChunk {
	var buf bytes.Buffer
	put(&buf, WORD(len(tags)), [8]BYTE{})
	for _, t := range tags {
		put(&buf, tagEntry{
			FromFrame:          t.FromFrame,
			ToFrame:            t.ToFrame,
			AnimationDirection: BYTE(t.AnimationDirection),
			Repeat:             t.Repeat,
		}, t.Name)
	}
	return testChunk{ChunkTags, buf.Bytes()}
}

func paletteChunk(colors ...color.NRGBA) testChunk {
	var buf bytes.Buffer
	put(&buf, paletteChunkHeader{
		NewPaletteSize: DWORD(len(colors)),
		LastColor:      DWORD(len(colors) - 1),
	})
	for _, c := range colors {
		put(&buf, WORD(0), c.R, c.G, c.B, c.A)
	}
	return testChunk{ChunkPalette, buf.Bytes()}
}

func oldPaletteChunk(colors ...[3]BYTE) testChunk {
	var buf bytes.Buffer
	put(&buf, WORD(1), BYTE(0), BYTE(len(colors)))
	for _, c := range colors {
		put(&buf, c)
	}
	return testChunk{ChunkOldPalette, buf.Bytes()}
}

func tilesetChunk(id, tw, th int, tiles []byte) testChunk {
	numTiles := len(tiles) / (tw * th * 4)
	compressed := deflate(tiles)

	var buf bytes.Buffer
	put(&buf, tilesetChunkHeader{
		TilesetID:     DWORD(id),
		TilesetFlags:  FlagIncludeTilesInsideFile | FlagTileIDZeroAsEmptyTile,
		NumberOfTiles: DWORD(numTiles),
		TileWidth:     WORD(tw),
		TileHeight:    WORD(th),
	}, "tiles", DWORD(len(compressed)))
	buf.Write(compressed)
	return testChunk{ChunkTileset, buf.Bytes()}
}

func rgba(colors ...color.NRGBA) []byte {
	out := make([]byte, 0, len(colors)*4)
	for _, c := range colors {
		out = append(out, c.R, c.G, c.B, c.A)
	}
	return out
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	none  = color.NRGBA{}
)
