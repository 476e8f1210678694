// Package aseprite decodes Aseprite sprite files (.ase, .aseprite) into one
// flattened image per frame plus the metadata playback needs.
//
// Layers are composited with their blend mode and opacity. Hidden and
// reference layers are skipped. The decoder works on an in-memory buffer and
// performs no I/O.
//
// Aseprite file format spec: https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md
package aseprite

// From https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md#references

type (
	BYTE  = uint8    // An 8-bit unsigned integer value
	WORD  = uint16   // A 16-bit unsigned integer value
	SHORT = int16    // A 16-bit signed integer value
	DWORD = uint32   // A 32-bit unsigned integer value
	LONG  = int32    // A 32-bit signed integer value
	FIXED = int32    // A 32-bit fixed point (16.16) value
	UUID  = [16]BYTE // A 128-bit (16-byte) unique identifier
)

// Chunk types this package understands. Anything else is skipped.
const (
	ChunkOldPalette    WORD = 0x0004
	ChunkOldPalette64  WORD = 0x0011
	ChunkLayer         WORD = 0x2004
	ChunkCel           WORD = 0x2005
	ChunkCelExtra      WORD = 0x2006
	ChunkColorProfile  WORD = 0x2007
	ChunkExternalFiles WORD = 0x2008
	ChunkMask          WORD = 0x2016 // DEPRECATED
	ChunkPath          WORD = 0x2017 // Never used
	ChunkTags          WORD = 0x2018
	ChunkPalette       WORD = 0x2019
	ChunkUserData      WORD = 0x2020
	ChunkSlice         WORD = 0x2022
	ChunkTileset       WORD = 0x2023
)
