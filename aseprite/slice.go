package aseprite

import "image"

// Slice flags
const (
	SliceFlagNinePatch = 1 << iota // 1 - It's a 9-patches slice
	SliceFlagPivot                 // 2 - Has pivot information
)

// Slice is a decoded 0x2022 chunk.
type Slice struct {
	Name  string
	Flags DWORD
	Keys  []SliceKey
}

// SliceKey is the slice geometry from Frame on.
type SliceKey struct {
	Frame  int
	Bounds image.Rectangle  // Slice bounds in the canvas
	Center *image.Rectangle // 9-patch center relative to Bounds
	Pivot  *image.Point     // Pivot relative to Bounds
}

func parseChunk0x2022(data []byte) (*Slice, error) {
	r := newChunkReader(data, "slice chunk")

	var fixed struct {
		NumberOfKeys DWORD
		Flags        DWORD
		Reserved     DWORD
	}
	if err := r.read(&fixed); err != nil {
		return nil, err
	}
	name, err := r.readString()
	if err != nil {
		return nil, err
	}

	slice := &Slice{Name: name, Flags: fixed.Flags}
	for range int(fixed.NumberOfKeys) {
		var key struct {
			Frame         DWORD
			X, Y          LONG
			Width, Height DWORD
		}
		if err := r.read(&key); err != nil {
			return nil, err
		}
		sk := SliceKey{
			Frame:  int(key.Frame),
			Bounds: image.Rect(int(key.X), int(key.Y), int(key.X)+int(key.Width), int(key.Y)+int(key.Height)),
		}

		if slice.Flags&SliceFlagNinePatch != 0 {
			var center struct {
				X, Y          LONG
				Width, Height DWORD
			}
			if err := r.read(&center); err != nil {
				return nil, err
			}
			rect := image.Rect(int(center.X), int(center.Y),
				int(center.X)+int(center.Width), int(center.Y)+int(center.Height))
			sk.Center = &rect
		}

		if slice.Flags&SliceFlagPivot != 0 {
			var pivot struct{ X, Y LONG }
			if err := r.read(&pivot); err != nil {
				return nil, err
			}
			pt := image.Pt(int(pivot.X), int(pivot.Y))
			sk.Pivot = &pt
		}

		slice.Keys = append(slice.Keys, sk)
	}

	return slice, nil
}
