package aseprite

import "encoding/binary"

// CelDataType represents the type of data in the cel.
type CelDataType WORD

const (
	RawImageData CelDataType = iota
	LinkedCelData
	CompressedImageData
	CompressedTilemapData
)

// Cel is a decoded 0x2005 chunk: the content of one layer in one frame.
type Cel struct {
	LayerIndex WORD        // Layer index (2 bytes)
	XPosition  SHORT       // X position (2 bytes)
	YPosition  SHORT       // Y position (2 bytes)
	Opacity    BYTE        // Opacity level (1 byte)
	CelType    CelDataType // Cel Type (2 bytes)
	ZIndex     SHORT       // Z-Index (2 bytes)

	// Image cels
	Width, Height WORD   // In pixels for image cels, in tiles for tilemap cels
	Pixels        []BYTE // Row by row PIXELs, decompressed

	// Linked cels
	FramePosition WORD // Frame the linked cel comes from

	// Tilemap cels
	Tilemap *Tilemap
}

// celChunkHeader is the fixed part shared by every cel type (16 bytes).
type celChunkHeader struct {
	LayerIndex WORD
	XPosition  SHORT
	YPosition  SHORT
	Opacity    BYTE
	CelType    WORD
	ZIndex     SHORT
	Reserved   [5]BYTE
}

// tilemapHeader follows the cel header of a compressed tilemap (32 bytes).
type tilemapHeader struct {
	Width               WORD     // Width in number of tiles
	Height              WORD     // Height in number of tiles
	BitsPerTile         WORD     // At the moment it's always 32-bit per tile
	TileIDBitmask       DWORD    // Bitmask for tile ID (e.g. 0x1fffffff for 32-bit tiles)
	XFlipBitmask        DWORD    // Bitmask for X flip
	YFlipBitmask        DWORD    // Bitmask for Y flip
	DiagonalFlipBitmask DWORD    // Bitmask for diagonal flip
	Reserved            [10]BYTE // Reserved for future use
}

// Tilemap is the tile grid of a tilemap cel.
type Tilemap struct {
	Columns, Rows int
	Tiles         []Tile // Row by row, from top to bottom
}

func parseChunk0x2005(data []byte, bytesPerPixel int) (*Cel, error) {
	r := newChunkReader(data, "cel chunk")

	var fixed celChunkHeader
	if err := r.read(&fixed); err != nil {
		return nil, err
	}

	cel := &Cel{
		LayerIndex: fixed.LayerIndex,
		XPosition:  fixed.XPosition,
		YPosition:  fixed.YPosition,
		Opacity:    fixed.Opacity,
		CelType:    CelDataType(fixed.CelType),
		ZIndex:     fixed.ZIndex,
	}

	switch cel.CelType {
	case RawImageData, CompressedImageData:
		if err := r.read(&cel.Width); err != nil {
			return nil, err
		}
		if err := r.read(&cel.Height); err != nil {
			return nil, err
		}
		size, err := imageSize("cel image", bytesPerPixel, int(cel.Width), int(cel.Height))
		if err != nil {
			return nil, err
		}

		if cel.CelType == RawImageData {
			cel.Pixels, err = r.readBytes(size)
		} else {
			cel.Pixels, err = decompressZlib(r.rest(), size, "cel image")
		}
		if err != nil {
			return nil, err
		}

	case LinkedCelData:
		if err := r.read(&cel.FramePosition); err != nil {
			return nil, err
		}

	case CompressedTilemapData:
		var th tilemapHeader
		if err := r.read(&th); err != nil {
			return nil, err
		}
		if th.BitsPerTile != 32 {
			return nil, unsupported("tilemap with %d bits per tile", th.BitsPerTile)
		}
		cel.Width, cel.Height = th.Width, th.Height

		size, err := imageSize("tilemap", 4, int(th.Width), int(th.Height))
		if err != nil {
			return nil, err
		}
		numTiles := size / 4
		raw, err := decompressZlib(r.rest(), size, "tilemap")
		if err != nil {
			return nil, err
		}

		tilemap := &Tilemap{
			Columns: int(th.Width),
			Rows:    int(th.Height),
			Tiles:   make([]Tile, numTiles),
		}
		for i := range tilemap.Tiles {
			v := binary.LittleEndian.Uint32(raw[i*4:])
			tilemap.Tiles[i] = Tile{
				ID:           int(v & th.TileIDBitmask),
				XFlip:        v&th.XFlipBitmask != 0,
				YFlip:        v&th.YFlipBitmask != 0,
				DiagonalFlip: v&th.DiagonalFlipBitmask != 0,
			}
		}
		cel.Tilemap = tilemap

	default:
		return nil, unsupported("cel type %d", cel.CelType)
	}

	return cel, nil
}

// order is the drawing order of the cel: layer index plus z-index.
func (c *Cel) order() int {
	return int(c.LayerIndex) + int(c.ZIndex)
}
