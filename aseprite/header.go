package aseprite

import "fmt"

const (
	// Magic number (0xA5E0)
	MagicNumber = 0xA5E0

	// Magic number (0xF1FA)
	MagicNumberFrame = 0xF1FA

	headerSize      = 128
	frameHeaderSize = 16
	chunkHeaderSize = 6

	// Color depth (bits per pixel)
	ColorDepthRGBA      WORD = 32
	ColorDepthGrayscale WORD = 16
	ColorDepthIndexed   WORD = 8
)

// Header flags
const (
	HeaderFlagLayerOpacityValid      = 1 << iota // 1 - Layer opacity has valid value
	HeaderFlagGroupOpacityValid                  // 2 - Layer blend mode/opacity is valid for groups
	HeaderFlagLayersHaveUUID                     // 4 - Layers have an UUID
)

// Header is the ASE header (128 bytes)
type Header struct {
	FileSize          DWORD    // File size (4 bytes)
	MagicNumberHeader WORD     // Magic number (0xA5E0) (2 bytes)
	FrameCount        WORD     // Number of frames (2 bytes)
	Width             WORD     // Width in pixels (2 bytes)
	Height            WORD     // Height in pixels (2 bytes)
	ColorDepth        WORD     // Color depth (bits per pixel) (32 bpp = RGBA, 16 bpp = Grayscale, 8 bpp = Indexed) (2 bytes)
	Flags             DWORD    // Header flags (4 bytes)
	Speed             WORD     // Speed (milliseconds between frames, DEPRECATED: use the frame duration field from each frame header) (2 bytes)
	Reserved1         DWORD    // Reserved (set to 0) (4 bytes)
	Reserved2         DWORD    // Reserved (set to 0) (4 bytes)
	TransparentIdx    BYTE     // Palette entry which represents transparent color in all non-background layers (only for Indexed sprites) (1 byte)
	IgnoreBytes       [3]BYTE  // Ignore these bytes (3 bytes)
	NumColors         WORD     // Number of colors (0 means 256 for old sprites format) (2 bytes)
	PixelWidth        BYTE     // Pixel width (pixel ratio is "pixel width/pixel height") (1 byte)
	PixelHeight       BYTE     // Pixel height (1 byte)
	GridX             SHORT    // X position of the grid (2 bytes)
	GridY             SHORT    // Y position of the grid (2 bytes)
	GridWidth         WORD     // Grid width (zero if there is no grid) (2 bytes)
	GridHeight        WORD     // Grid height (zero if there is no grid) (2 bytes)
	FutureUse         [84]BYTE // For future use (set to zero) (84 bytes)
}

// ColorDepthDescription returns the color mode name.
func (h Header) ColorDepthDescription() string {
	switch h.ColorDepth {
	case ColorDepthRGBA:
		return "RGBA"
	case ColorDepthGrayscale:
		return "Grayscale"
	case ColorDepthIndexed:
		return "Indexed"
	default:
		return "Unknown color depth"
	}
}

// BytesPerPixel returns the size of a PIXEL in this file, 0 for unknown depths.
func (h Header) BytesPerPixel() int {
	switch h.ColorDepth {
	case ColorDepthRGBA, ColorDepthGrayscale, ColorDepthIndexed:
		return int(h.ColorDepth) / 8
	default:
		return 0
	}
}

// IsLayerOpacityValid reports whether the layer opacity field must be applied.
func (h Header) IsLayerOpacityValid() bool {
	return h.Flags&HeaderFlagLayerOpacityValid != 0
}

// NumberOfColors returns the interpreted number of colors.
func (h Header) NumberOfColors() int {
	if h.NumColors == 0 {
		return 256
	}
	return int(h.NumColors)
}

// PixelRatio returns the pixel aspect ratio.
func (h Header) PixelRatio() string {
	if h.PixelWidth == 0 || h.PixelHeight == 0 {
		return "1:1"
	}
	return fmt.Sprintf("%d:%d", h.PixelWidth, h.PixelHeight)
}

func (h Header) validate() error {
	if h.MagicNumberHeader != MagicNumber {
		return malformed("bad header magic number 0x%04X", h.MagicNumberHeader)
	}
	if h.FrameCount == 0 {
		return malformed("no frames")
	}
	if h.Width == 0 || h.Height == 0 {
		return malformed("bad sprite size %dx%d", h.Width, h.Height)
	}
	if h.BytesPerPixel() == 0 {
		return unsupported("color depth %d", h.ColorDepth)
	}
	if _, err := imageSize("sprite canvas", 4, int(h.Width), int(h.Height)); err != nil {
		return err
	}
	return nil
}

// FrameHeader is the 16 byte header in front of every frame.
type FrameHeader struct {
	BytesInFrame  DWORD   // Bytes in frame, header included (4 bytes)
	MagicNumber   WORD    // Magic number (0xF1FA) (2 bytes)
	OldChunkCount WORD    // Old field which specifies the number of "chunks" in this frame. If this value is 0xFFFF, use NewChunkCount (2 bytes)
	FrameDuration WORD    // Frame duration in milliseconds (2 bytes)
	Reserved      [2]BYTE // Reserved (set to 0) (2 bytes)
	NewChunkCount DWORD   // New field which specifies the number of "chunks" in this frame. If this is 0, use OldChunkCount (4 bytes)
}

// NumberOfChunks returns the number of chunks in the frame.
func (fh *FrameHeader) NumberOfChunks() uint32 {
	if fh.OldChunkCount == 0xFFFF {
		return fh.NewChunkCount
	}
	if fh.NewChunkCount == 0 {
		return uint32(fh.OldChunkCount)
	}
	return fh.NewChunkCount
}
