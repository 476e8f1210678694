package aseprite

import "image/color"

// Palette entry flags
const paletteEntryHasName = 1

// paletteChunkHeader is the fixed part of the 0x2019 chunk (20 bytes).
type paletteChunkHeader struct {
	NewPaletteSize DWORD   // New palette size, total number of entries
	FirstColor     DWORD   // First color index to change
	LastColor      DWORD   // Last color index to change
	Reserved       [8]BYTE // Reserved (set to 0)
}

// parseChunk0x2019 applies a palette chunk on top of palette and returns the
// resized result.
func parseChunk0x2019(data []byte, palette color.Palette) (color.Palette, error) {
	r := newChunkReader(data, "palette chunk")

	var fixed paletteChunkHeader
	if err := r.read(&fixed); err != nil {
		return nil, err
	}
	if fixed.NewPaletteSize > 1<<16 {
		return nil, malformed("palette of %d entries", fixed.NewPaletteSize)
	}
	if fixed.FirstColor > fixed.LastColor || fixed.LastColor >= fixed.NewPaletteSize {
		return nil, malformed("palette range [%d, %d] outside %d entries",
			fixed.FirstColor, fixed.LastColor, fixed.NewPaletteSize)
	}

	palette = resizePalette(palette, int(fixed.NewPaletteSize))
	for i := fixed.FirstColor; i <= fixed.LastColor; i++ {
		var entry struct {
			Flags               WORD
			Red, Green, Blue, A BYTE
		}
		if err := r.read(&entry); err != nil {
			return nil, err
		}
		if entry.Flags&paletteEntryHasName != 0 {
			if _, err := r.readString(); err != nil {
				return nil, err
			}
		}
		palette[i] = color.NRGBA{R: entry.Red, G: entry.Green, B: entry.Blue, A: entry.A}
	}

	return palette, nil
}

// parseChunk0x0004 applies an old palette chunk (0x0004, or 0x0011 when
// sixBit is set and components are in 0-63) on top of palette.
func parseChunk0x0004(data []byte, palette color.Palette, sixBit bool) (color.Palette, error) {
	r := newChunkReader(data, "old palette chunk")

	var numberOfPackets WORD
	if err := r.read(&numberOfPackets); err != nil {
		return nil, err
	}

	index := 0
	for range int(numberOfPackets) {
		var packet struct {
			Skip  BYTE // Number of palette entries to skip from the last packet
			Count BYTE // Number of colors in this packet (0 means 256 colors)
		}
		if err := r.read(&packet); err != nil {
			return nil, err
		}
		index += int(packet.Skip)
		count := int(packet.Count)
		if count == 0 {
			count = 256
		}
		if index+count > len(palette) {
			palette = resizePalette(palette, index+count)
		}

		for range count {
			var rgb [3]BYTE
			if err := r.read(&rgb); err != nil {
				return nil, err
			}
			if sixBit {
				for c := range rgb {
					rgb[c] = BYTE(int(rgb[c]) * 255 / 63)
				}
			}
			palette[index] = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
			index++
		}
	}

	return palette, nil
}

func resizePalette(palette color.Palette, size int) color.Palette {
	for len(palette) < size {
		palette = append(palette, color.NRGBA{})
	}
	return palette[:size]
}
