package atlas

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"math"
	"slices"

	"golang.org/x/image/draw"
)

// Pack lays frames out in one atlas. The result only depends on the frames
// and the options, and Slots is total over the input order whatever order
// the strategy places frames in.
func Pack(frames []image.Image, opts ...Option) (*Layout, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyInput
	}
	cfg := newConfig(opts)

	slots, sources, err := collect(frames, cfg)
	if err != nil {
		return nil, err
	}

	sizes := make([]image.Point, len(sources))
	for i, src := range sources {
		sizes[i] = src.Bounds().Size()
	}

	var (
		positions []image.Point
		size      image.Point
	)
	switch cfg.strategy {
	case Grid:
		positions, size, err = placeGrid(sizes, cfg.padding, cfg.maxSize)
	case Strip:
		positions, size, err = placeStrip(sizes, cfg.padding, cfg.maxSize)
	case Skyline:
		positions, size, err = placeSkyline(sizes, cfg.padding, cfg.maxSize)
	default:
		err = fmt.Errorf("atlas: unknown strategy %v", cfg.strategy)
	}
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rectangle{Max: size})
	regions := make([]image.Rectangle, len(sources))
	for i, src := range sources {
		regions[i] = image.Rectangle{Min: positions[i], Max: positions[i].Add(sizes[i])}
		blit(img, positions[i], src)
	}

	return &Layout{Image: img, Regions: regions, Slots: slots}, nil
}

// collect assigns a slot to every frame. With dedupe, frames with identical
// pixels share the slot of the first of them.
func collect(frames []image.Image, cfg config) ([]int, []*image.NRGBA, error) {
	slots := make([]int, len(frames))
	var sources []*image.NRGBA
	seen := make(map[uint64][]int)

	for i, frame := range frames {
		if frame == nil || frame.Bounds().Empty() {
			return nil, nil, fmt.Errorf("%w: frame %d has no pixels", ErrEmptyInput, i)
		}
		if size := frame.Bounds().Size(); size.X > cfg.maxSize || size.Y > cfg.maxSize {
			return nil, nil, capacity("frame %d is %dx%d, atlas sides are at most %d", i, size.X, size.Y, cfg.maxSize)
		}
		img := toNRGBA(frame)

		if cfg.dedupe {
			key := pixelHash(img)
			if slot, ok := findSame(seen[key], sources, img); ok {
				slots[i] = slot
				continue
			}
			seen[key] = append(seen[key], len(sources))
		}

		slots[i] = len(sources)
		sources = append(sources, img)
	}

	return slots, sources, nil
}

// toNRGBA returns src as an NRGBA image with its origin at (0, 0). NRGBA
// pixels are copied as they are, without a round trip through
// premultiplied alpha.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	switch img := src.(type) {
	case *image.NRGBA:
		if b.Min == (image.Point{}) {
			return img
		}
		out := image.NewNRGBA(image.Rectangle{Max: b.Size()})
		blit(out, image.Point{}, img)
		return out
	default:
		out := image.NewNRGBA(image.Rectangle{Max: b.Size()})
		draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
		return out
	}
}

// blit copies every row of src to dst with the top left corner at at.
func blit(dst *image.NRGBA, at image.Point, src *image.NRGBA) {
	b := src.Bounds()
	n := b.Dx() * 4
	for y := b.Min.Y; y < b.Max.Y; y++ {
		d := dst.PixOffset(at.X, at.Y+y-b.Min.Y)
		s := src.PixOffset(b.Min.X, y)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
}

func pixelHash(img *image.NRGBA) uint64 {
	h := fnv.New64a()
	size := img.Rect.Size()
	fmt.Fprintf(h, "%dx%d", size.X, size.Y)
	for y := range size.Y {
		off := img.PixOffset(0, y)
		h.Write(img.Pix[off : off+size.X*4])
	}
	return h.Sum64()
}

func findSame(candidates []int, sources []*image.NRGBA, img *image.NRGBA) (int, bool) {
	for _, slot := range candidates {
		if samePixels(sources[slot], img) {
			return slot, true
		}
	}
	return 0, false
}

func samePixels(a, b *image.NRGBA) bool {
	size := a.Rect.Size()
	if size != b.Rect.Size() {
		return false
	}
	for y := range size.Y {
		ao, bo := a.PixOffset(0, y), b.PixOffset(0, y)
		if !bytes.Equal(a.Pix[ao:ao+size.X*4], b.Pix[bo:bo+size.X*4]) {
			return false
		}
	}
	return true
}

func largest(sizes []image.Point) image.Point {
	var m image.Point
	for _, s := range sizes {
		m.X = max(m.X, s.X)
		m.Y = max(m.Y, s.Y)
	}
	return m
}

func capacity(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCapacityExceeded, fmt.Sprintf(format, args...))
}

// placeGrid uses cells of the largest frame size, as close to a square as
// the maximum width allows.
func placeGrid(sizes []image.Point, padding, limit int) ([]image.Point, image.Point, error) {
	cell := largest(sizes)
	n := len(sizes)

	maxCols := (limit + padding) / (cell.X + padding)
	if maxCols < 1 || cell.Y > limit {
		return nil, image.Point{}, capacity("%dx%d frames in a %d pixel atlas", cell.X, cell.Y, limit)
	}
	cols := min(int(math.Ceil(math.Sqrt(float64(n)))), maxCols)
	rows := (n + cols - 1) / cols

	size := image.Pt(cols*cell.X+(cols-1)*padding, rows*cell.Y+(rows-1)*padding)
	if size.Y > limit {
		return nil, image.Point{}, capacity("%d frames of %dx%d need %d rows", n, cell.X, cell.Y, rows)
	}

	positions := make([]image.Point, n)
	for i := range positions {
		positions[i] = image.Pt((i%cols)*(cell.X+padding), (i/cols)*(cell.Y+padding))
	}
	return positions, size, nil
}

// placeStrip puts every frame on one row.
func placeStrip(sizes []image.Point, padding, limit int) ([]image.Point, image.Point, error) {
	positions := make([]image.Point, len(sizes))
	x, height := 0, 0
	for i, s := range sizes {
		if i > 0 {
			x += padding
		}
		positions[i] = image.Pt(x, 0)
		x += s.X
		height = max(height, s.Y)
	}
	if x > limit || height > limit {
		return nil, image.Point{}, capacity("strip of %dx%d", x, height)
	}
	return positions, image.Pt(x, height), nil
}

// placeSkyline tries every power of two width up to limit and keeps the
// smallest atlas that fits.
func placeSkyline(sizes []image.Point, padding, limit int) ([]image.Point, image.Point, error) {
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if sizes[a].Y != sizes[b].Y {
			return sizes[b].Y - sizes[a].Y
		}
		return sizes[b].X - sizes[a].X
	})

	widest := largest(sizes).X
	var (
		best     []image.Point
		bestSize image.Point
	)
	for width := 1; ; width *= 2 {
		w := min(width, limit)
		if w >= widest {
			positions, size, ok := skylinePack(sizes, order, w, padding, limit)
			if ok && (best == nil || size.X*size.Y < bestSize.X*bestSize.Y) {
				best, bestSize = positions, size
			}
		}
		if w == limit {
			break
		}
	}

	if best == nil {
		return nil, image.Point{}, capacity("%d frames in a %d pixel atlas", len(sizes), limit)
	}
	return best, bestSize, nil
}

type segment struct {
	x, y, w int
}

// skylinePack places the frames in order using the bottom-left rule on a
// skyline of the given width. Every frame takes padding extra pixels right
// and below it.
func skylinePack(sizes []image.Point, order []int, width, padding, limit int) ([]image.Point, image.Point, bool) {
	sky := []segment{{x: 0, y: 0, w: width + padding}}
	positions := make([]image.Point, len(sizes))
	var size image.Point

	for _, idx := range order {
		w, h := sizes[idx].X+padding, sizes[idx].Y+padding

		bestSeg, bestX, bestY := -1, 0, 0
		for i := range sky {
			y, ok := fitSegment(sky, i, w, width+padding)
			if !ok {
				continue
			}
			if bestSeg < 0 || y < bestY {
				bestSeg, bestX, bestY = i, sky[i].x, y
			}
		}
		if bestSeg < 0 {
			return nil, image.Point{}, false
		}

		positions[idx] = image.Pt(bestX, bestY)
		size.X = max(size.X, bestX+sizes[idx].X)
		size.Y = max(size.Y, bestY+sizes[idx].Y)
		if size.Y > limit {
			return nil, image.Point{}, false
		}
		sky = raise(sky, bestSeg, w, bestY+h)
	}

	return positions, size, true
}

// fitSegment returns the height at which a w wide rectangle rests when its
// left edge is on segment i.
func fitSegment(sky []segment, i, w, width int) (int, bool) {
	x := sky[i].x
	if x+w > width {
		return 0, false
	}
	y := 0
	for j := i; j < len(sky) && sky[j].x < x+w; j++ {
		y = max(y, sky[j].y)
	}
	return y, true
}

// raise puts a segment of width w and height top on segment i, trimming the
// segments it covers and merging neighbours of the same height.
func raise(sky []segment, i, w, top int) []segment {
	x := sky[i].x
	end := x + w

	out := make([]segment, 0, len(sky)+1)
	out = append(out, sky[:i]...)
	out = append(out, segment{x: x, y: top, w: w})
	for _, s := range sky[i:] {
		if s.x+s.w <= end {
			continue
		}
		if s.x < end {
			s.w -= end - s.x
			s.x = end
		}
		out = append(out, s)
	}

	merged := out[:1]
	for _, s := range out[1:] {
		last := &merged[len(merged)-1]
		if last.y == s.y {
			last.w += s.w
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
