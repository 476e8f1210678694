package asset

import (
	"bytes"
	"encoding/binary"
	"image/color"

	"github.com/retroblast-engine/aseanim/aseprite"
)

type fixtureTag struct {
	name      string
	from, to  uint16
	direction uint8
}

// fixtureColor is the solid color of frame i in fixtures.
func fixtureColor(i int) color.NRGBA {
	return color.NRGBA{R: uint8(40 * i), G: 200, B: uint8(255 - 40*i), A: 255}
}

// fixture builds a 2x2 RGBA sprite with one layer and one frame per
// duration. Frame i is filled with fixtureColor(i).
func fixture(durations []uint16, tags ...fixtureTag) []byte {
	var body bytes.Buffer
	for i, d := range durations {
		var chunks [][]byte

		if i == 0 {
			var layer bytes.Buffer
			write(&layer, uint16(aseprite.LayerFlagVisible), uint16(0), uint16(0), uint16(0), uint16(0),
				uint16(0), uint8(255), [3]uint8{}, "body")
			chunks = append(chunks, chunk(aseprite.ChunkLayer, layer.Bytes()))

			if len(tags) > 0 {
				var tc bytes.Buffer
				write(&tc, uint16(len(tags)), [8]uint8{})
				for _, t := range tags {
					write(&tc, t.from, t.to, t.direction, uint16(0), [6]uint8{}, [3]uint8{}, uint8(0), t.name)
				}
				chunks = append(chunks, chunk(aseprite.ChunkTags, tc.Bytes()))
			}
		}

		var cel bytes.Buffer
		write(&cel, uint16(0), int16(0), int16(0), uint8(255), uint16(aseprite.RawImageData), int16(0), [5]uint8{},
			uint16(2), uint16(2))
		c := fixtureColor(i)
		for range 4 {
			write(&cel, c.R, c.G, c.B, c.A)
		}
		chunks = append(chunks, chunk(aseprite.ChunkCel, cel.Bytes()))

		var frame bytes.Buffer
		for _, c := range chunks {
			frame.Write(c)
		}
		write(&body, aseprite.FrameHeader{
			BytesInFrame:  uint32(16 + frame.Len()),
			MagicNumber:   aseprite.MagicNumberFrame,
			OldChunkCount: uint16(len(chunks)),
			FrameDuration: d,
			NewChunkCount: uint32(len(chunks)),
		})
		body.Write(frame.Bytes())
	}

	var out bytes.Buffer
	write(&out, aseprite.Header{
		FileSize:          uint32(128 + body.Len()),
		MagicNumberHeader: aseprite.MagicNumber,
		FrameCount:        uint16(len(durations)),
		Width:             2,
		Height:            2,
		ColorDepth:        aseprite.ColorDepthRGBA,
		Flags:             aseprite.HeaderFlagLayerOpacityValid,
	})
	out.Write(body.Bytes())
	return out.Bytes()
}

func chunk(typ uint16, data []byte) []byte {
	var buf bytes.Buffer
	write(&buf, uint32(6+len(data)), typ)
	buf.Write(data)
	return buf.Bytes()
}

func write(buf *bytes.Buffer, values ...any) {
	for _, v := range values {
		if s, ok := v.(string); ok {
			_ = binary.Write(buf, binary.LittleEndian, uint16(len(s)))
			buf.WriteString(s)
			continue
		}
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
}
