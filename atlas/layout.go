package atlas

import (
	"image"

	"golang.org/x/image/draw"
)

// Layout is a packed atlas.
type Layout struct {
	Image *image.NRGBA

	// Regions holds one rectangle per packed slot, inside Image.
	Regions []image.Rectangle

	// Slots maps every frame index to its slot in Regions. Frames share a
	// slot only when they were deduplicated.
	Slots []int
}

// Len returns the number of frames in the layout.
func (l *Layout) Len() int {
	return len(l.Slots)
}

// Region returns the atlas rectangle of frame. It returns the empty
// rectangle for frames outside [0, Len()).
func (l *Layout) Region(frame int) image.Rectangle {
	if frame < 0 || frame >= len(l.Slots) {
		return image.Rectangle{}
	}
	return l.Regions[l.Slots[frame]]
}

// SubImage returns the pixels of frame, sharing memory with the atlas.
func (l *Layout) SubImage(frame int) *image.NRGBA {
	return l.Image.SubImage(l.Region(frame)).(*image.NRGBA)
}

// Scale returns a copy of the layout magnified n times with
// nearest-neighbour sampling. Factors below 2 return l itself.
func (l *Layout) Scale(n int) *Layout {
	if n < 2 {
		return l
	}

	b := l.Image.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx()*n, b.Dy()*n))
	draw.NearestNeighbor.Scale(img, img.Bounds(), l.Image, b, draw.Src, nil)

	regions := make([]image.Rectangle, len(l.Regions))
	for i, r := range l.Regions {
		regions[i] = image.Rect(r.Min.X*n, r.Min.Y*n, r.Max.X*n, r.Max.Y*n)
	}

	return &Layout{
		Image:   img,
		Regions: regions,
		Slots:   append([]int(nil), l.Slots...),
	}
}
