package aseprite

/* Tileset flags (1: Enabled, 0: Disabled)
Bit 5 (32) - Same for D(iagonal) flips
Bit 4 (16) - Same for Y flips
Bit 3 (8)  - Aseprite will try to match modified tiles with their X flipped version automatically in Auto mode when using this tileset.
Bit 2 (4)  - Tilemaps using this tileset use tile ID=0 as empty tile (this is the new format). In rare cases this bit is off, and the empty tile will be equal to 0xffffffff (used in internal versions of Aseprite)
Bit 1 (2)  - Include tiles inside this file
Bit 0 (1)  - Include link to external file
*/

const (
	FlagIncludeLinkToExternalFile = 1 << iota // 1
	FlagIncludeTilesInsideFile                // 2
	FlagTileIDZeroAsEmptyTile                 // 4
	FlagXFlipAutoMatch                        // 8
	FlagYFlipAutoMatch                        // 16
	FlagDiagonalFlipAutoMatch                 // 32
)

// Tile is one cell of a tilemap.
type Tile struct {
	ID                         int
	XFlip, YFlip, DiagonalFlip bool
}

// Tileset is a decoded 0x2023 chunk.
type Tileset struct {
	ID            DWORD // Tileset ID
	Flags         DWORD // Tileset flags
	NumberOfTiles int
	TileWidth     int
	TileHeight    int
	Name          string

	// Pixels of every tile stacked vertically: TileWidth x (TileHeight x
	// NumberOfTiles) PIXELs, decompressed. Nil when the tiles live in an
	// external file.
	Pixels []BYTE
}

// tilesetChunkHeader is the fixed part of the tileset chunk (32 bytes).
type tilesetChunkHeader struct {
	TilesetID     DWORD
	TilesetFlags  DWORD
	NumberOfTiles DWORD
	TileWidth     WORD
	TileHeight    WORD
	BaseIndex     SHORT // Just for UI purposes
	Reserved      [14]BYTE
}

func parseChunk0x2023(data []byte, bytesPerPixel int) (*Tileset, error) {
	r := newChunkReader(data, "tileset chunk")

	var fixed tilesetChunkHeader
	if err := r.read(&fixed); err != nil {
		return nil, err
	}
	name, err := r.readString()
	if err != nil {
		return nil, err
	}

	ts := &Tileset{
		ID:            fixed.TilesetID,
		Flags:         fixed.TilesetFlags,
		NumberOfTiles: int(fixed.NumberOfTiles),
		TileWidth:     int(fixed.TileWidth),
		TileHeight:    int(fixed.TileHeight),
		Name:          name,
	}

	if ts.Flags&FlagIncludeLinkToExternalFile != 0 {
		// External file ID and tileset ID inside it.
		if err := r.skip(8); err != nil {
			return nil, err
		}
	}

	if ts.Flags&FlagIncludeTilesInsideFile != 0 {
		var length DWORD
		if err := r.read(&length); err != nil {
			return nil, err
		}
		compressed, err := r.readBytes(int(length))
		if err != nil {
			return nil, err
		}
		size, err := imageSize("tileset image", bytesPerPixel, ts.TileWidth, ts.TileHeight, ts.NumberOfTiles)
		if err != nil {
			return nil, err
		}
		ts.Pixels, err = decompressZlib(compressed, size, "tileset image")
		if err != nil {
			return nil, err
		}
	}

	return ts, nil
}

// tilePixels returns the PIXELs of tile id, row by row.
func (ts *Tileset) tilePixels(id, bytesPerPixel int) ([]BYTE, error) {
	if ts.Pixels == nil {
		return nil, unsupported("tileset %q stored in an external file", ts.Name)
	}
	if id < 0 || id >= ts.NumberOfTiles {
		return nil, malformed("tile %d outside tileset %q of %d tiles", id, ts.Name, ts.NumberOfTiles)
	}
	size := ts.TileWidth * ts.TileHeight * bytesPerPixel
	return ts.Pixels[id*size : (id+1)*size], nil
}
