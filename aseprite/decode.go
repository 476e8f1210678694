package aseprite

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/retroblast-engine/aseanim/anim"
)

// DefaultFrameDuration is used for frames that store no duration and come
// from files without the deprecated header speed.
const DefaultFrameDuration = 100 * time.Millisecond

// Frame is one frame of the file: its display duration and its cels.
type Frame struct {
	Duration time.Duration
	Cels     []*Cel
}

// File is a decoded Aseprite file.
type File struct {
	Header   Header
	Layers   []*Layer
	Frames   []Frame
	Tags     []Tag
	Slices   []*Slice
	Tilesets map[DWORD]*Tileset
	Palette  color.Palette // Nil for files without a palette

	// Warnings lists recoverable oddities met while decoding, such as
	// duplicate tag names.
	Warnings []string

	oldPalette color.Palette
	images     []*image.NRGBA
}

// Decode parses data and flattens every frame.
func Decode(data []byte) (*File, error) {
	header, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	f := &File{Header: header, Tilesets: make(map[DWORD]*Tileset)}

	offset := headerSize
	for i := range int(f.Header.FrameCount) {
		n, err := f.readFrame(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		offset += n
	}

	if f.Palette == nil {
		f.Palette = f.oldPalette
	}

	canvas := uint64(f.Header.Width) * uint64(f.Header.Height) * uint64(len(f.Frames))
	if canvas > maxCanvasPixels {
		return nil, malformed("%d frames of %dx%d are more than %d pixels",
			len(f.Frames), f.Header.Width, f.Header.Height, maxCanvasPixels)
	}

	if err := linkLayerParents(f.Layers); err != nil {
		return nil, err
	}
	if err := f.checkTags(); err != nil {
		return nil, err
	}
	f.warnDuplicates()
	if err := f.compose(); err != nil {
		return nil, err
	}

	return f, nil
}

// ReadHeader reads and validates the file header without decoding any frame.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < headerSize {
		return h, malformed("file of %d bytes is shorter than the header", len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return h, malformed("header: %v", err)
	}
	if err := h.validate(); err != nil {
		return h, err
	}
	return h, nil
}

// readFrame reads one frame from the start of data and returns its size.
func (f *File) readFrame(data []byte) (int, error) {
	if len(data) < frameHeaderSize {
		return 0, malformed("truncated frame header")
	}

	var fh FrameHeader
	if err := binary.Read(bytes.NewReader(data[:frameHeaderSize]), binary.LittleEndian, &fh); err != nil {
		return 0, malformed("frame header: %v", err)
	}
	if fh.MagicNumber != MagicNumberFrame {
		return 0, malformed("bad frame magic number 0x%04X", fh.MagicNumber)
	}
	if fh.BytesInFrame < frameHeaderSize || uint64(fh.BytesInFrame) > uint64(len(data)) {
		return 0, malformed("frame size %d with %d bytes left", fh.BytesInFrame, len(data))
	}

	frame := Frame{Duration: f.frameDuration(fh.FrameDuration)}
	body := data[frameHeaderSize:fh.BytesInFrame]
	frameIndex := len(f.Frames)

	pos := 0
	for j := range fh.NumberOfChunks() {
		if len(body)-pos < chunkHeaderSize {
			return 0, malformed("chunk %d: truncated chunk header", j)
		}
		size := binary.LittleEndian.Uint32(body[pos:])
		typ := binary.LittleEndian.Uint16(body[pos+4:])
		if size < chunkHeaderSize || uint64(size) > uint64(len(body)-pos) {
			return 0, malformed("chunk %d: invalid chunk size %d", j, size)
		}
		if err := f.parseChunk(&frame, frameIndex, typ, body[pos+chunkHeaderSize:pos+int(size)]); err != nil {
			return 0, fmt.Errorf("chunk 0x%04X: %w", typ, err)
		}
		pos += int(size)
	}

	f.Frames = append(f.Frames, frame)
	return int(fh.BytesInFrame), nil
}

func (f *File) frameDuration(ms WORD) time.Duration {
	switch {
	case ms != 0:
		return time.Duration(ms) * time.Millisecond
	case f.Header.Speed != 0:
		return time.Duration(f.Header.Speed) * time.Millisecond
	default:
		return DefaultFrameDuration
	}
}

func (f *File) parseChunk(frame *Frame, frameIndex int, typ WORD, data []byte) error {
	bpp := f.Header.BytesPerPixel()

	switch typ {
	case ChunkOldPalette, ChunkOldPalette64:
		palette, err := parseChunk0x0004(data, f.oldPalette, typ == ChunkOldPalette64)
		if err != nil {
			return err
		}
		f.oldPalette = palette

	case ChunkPalette:
		palette, err := parseChunk0x2019(data, f.Palette)
		if err != nil {
			return err
		}
		f.Palette = palette

	case ChunkLayer:
		layer, err := parseChunk0x2004(data)
		if err != nil {
			return err
		}
		f.Layers = append(f.Layers, layer)

	case ChunkCel:
		cel, err := parseChunk0x2005(data, bpp)
		if err != nil {
			return err
		}
		if cel.CelType == LinkedCelData && int(cel.FramePosition) >= frameIndex {
			return malformed("cel links frame %d from frame %d", cel.FramePosition, frameIndex)
		}
		frame.Cels = append(frame.Cels, cel)

	case ChunkTags:
		tags, err := parseChunk0x2018(data)
		if err != nil {
			return err
		}
		f.Tags = append(f.Tags, tags...)

	case ChunkSlice:
		slice, err := parseChunk0x2022(data)
		if err != nil {
			return err
		}
		f.Slices = append(f.Slices, slice)

	case ChunkTileset:
		ts, err := parseChunk0x2023(data, bpp)
		if err != nil {
			return err
		}
		f.Tilesets[ts.ID] = ts
	}

	return nil
}

func (f *File) checkTags() error {
	for _, tag := range f.Tags {
		if tag.FromFrame > tag.ToFrame || int(tag.ToFrame) >= len(f.Frames) {
			return malformed("tag %q range [%d, %d] outside %d frames",
				tag.Name, tag.FromFrame, tag.ToFrame, len(f.Frames))
		}
		if tag.Name == "" {
			return malformed("tag without a name")
		}
	}
	return nil
}

// warnDuplicates records a warning for every tag and slice name that is
// used more than once. Info keeps the first of each.
func (f *File) warnDuplicates() {
	tags := make(map[string]bool, len(f.Tags))
	for _, tag := range f.Tags {
		if tags[tag.Name] {
			f.Warnings = append(f.Warnings, fmt.Sprintf("duplicate tag %q ignored", tag.Name))
		}
		tags[tag.Name] = true
	}

	sliceNames := make(map[string]bool, len(f.Slices))
	for _, slice := range f.Slices {
		if sliceNames[slice.Name] {
			f.Warnings = append(f.Warnings, fmt.Sprintf("duplicate slice %q ignored", slice.Name))
		}
		sliceNames[slice.Name] = true
	}
}

// Images returns the flattened image of every frame, in frame order. Each
// image has the size of the sprite canvas.
func (f *File) Images() []*image.NRGBA {
	return f.images
}

// Info builds the playback metadata of the file. Duplicate tag and slice
// names keep their first occurrence. Info doesn't modify f and is safe to
// call from several goroutines.
func (f *File) Info() (*anim.Info, error) {
	cfg := anim.InfoConfig{
		Width:     int(f.Header.Width),
		Height:    int(f.Header.Height),
		Durations: make([]time.Duration, len(f.Frames)),
		Slices:    make(map[string][]anim.SliceKey, len(f.Slices)),
	}
	for i, frame := range f.Frames {
		cfg.Durations[i] = frame.Duration
	}

	seen := make(map[string]bool, len(f.Tags))
	for _, tag := range f.Tags {
		if seen[tag.Name] {
			continue
		}
		seen[tag.Name] = true
		cfg.Tags = append(cfg.Tags, anim.Tag{
			Name:      tag.Name,
			From:      int(tag.FromFrame),
			To:        int(tag.ToFrame),
			Direction: anim.Direction(tag.AnimationDirection),
			Repeat:    int(tag.Repeat),
		})
	}

	for _, slice := range f.Slices {
		if _, dup := cfg.Slices[slice.Name]; dup {
			continue
		}
		keys := make([]anim.SliceKey, len(slice.Keys))
		for i, k := range slice.Keys {
			keys[i] = anim.SliceKey{Frame: k.Frame, Bounds: k.Bounds, Center: k.Center, Pivot: k.Pivot}
		}
		cfg.Slices[slice.Name] = keys
	}

	if f.Header.ColorDepth == ColorDepthIndexed {
		cfg.Palette = f.Palette
		cfg.TransparentIndex = f.Header.TransparentIdx
	} else if f.Palette != nil {
		cfg.Palette = f.Palette
	}

	info, err := anim.NewInfo(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return info, nil
}

// DecodeFrames decodes data into its frame images and playback metadata.
func DecodeFrames(data []byte) ([]*image.NRGBA, *anim.Info, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Info()
	if err != nil {
		return nil, nil, err
	}
	return f.Images(), info, nil
}
