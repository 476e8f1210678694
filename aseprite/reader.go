package aseprite

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
)

// chunkReader reads little-endian values from a chunk and turns every short
// read into ErrMalformed.
type chunkReader struct {
	r    *bytes.Reader
	what string
}

func newChunkReader(data []byte, what string) *chunkReader {
	return &chunkReader{r: bytes.NewReader(data), what: what}
}

func (c *chunkReader) read(v any) error {
	if err := binary.Read(c.r, binary.LittleEndian, v); err != nil {
		return malformed("%s: %v", c.what, err)
	}
	return nil
}

func (c *chunkReader) readBytes(n int) ([]byte, error) {
	if n < 0 || n > c.r.Len() {
		return nil, malformed("%s: need %d bytes, %d left", c.what, n, c.r.Len())
	}
	buf := make([]byte, n)
	_, _ = io.ReadFull(c.r, buf)
	return buf, nil
}

// rest returns every unread byte.
func (c *chunkReader) rest() []byte {
	buf, _ := c.readBytes(c.r.Len())
	return buf
}

// readString reads a STRING: WORD length followed by that many UTF-8 bytes.
func (c *chunkReader) readString() (string, error) {
	var length WORD
	if err := c.read(&length); err != nil {
		return "", err
	}
	chars, err := c.readBytes(int(length))
	if err != nil {
		return "", err
	}
	return string(chars), nil
}

func (c *chunkReader) skip(n int) error {
	_, err := c.readBytes(n)
	return err
}

const (
	// maxPixels bounds every image a file declares: the canvas, a cel, a
	// tilemap and the stacked tiles of a tileset.
	maxPixels = 1 << 26

	// maxCanvasPixels bounds the canvases of all frames together.
	maxCanvasPixels = 1 << 28

	// maxInflateRatio is the largest output/input ratio deflate can reach.
	maxInflateRatio = 1032
)

// imageSize returns the size in bytes of an image made of the product of
// dims pixels of bpp bytes each. Images above maxPixels are malformed.
func imageSize(what string, bpp int, dims ...int) (int, error) {
	pixels := uint64(1)
	for _, d := range dims {
		if d < 0 {
			return 0, malformed("%s: negative dimension %d", what, d)
		}
		// pixels <= maxPixels and d < 1<<32 here, so the product fits.
		pixels *= uint64(d)
		if pixels > maxPixels {
			return 0, malformed("%s: more than %d pixels", what, maxPixels)
		}
	}
	return int(pixels) * bpp, nil
}

// decompressZlib inflates data and checks that it holds exactly size bytes.
func decompressZlib(data []byte, size int, what string) ([]byte, error) {
	if len(data) == 0 {
		return nil, malformed("%s: compressed data is empty", what)
	}
	if uint64(size) > uint64(len(data))*maxInflateRatio {
		return nil, malformed("%s: %d compressed bytes can't hold %d bytes", what, len(data), size)
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, malformed("%s: failed to create zlib reader: %v", what, err)
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, io.LimitReader(r, int64(size)+1)); err != nil {
		return nil, malformed("%s: failed to decompress: %v", what, err)
	}
	if out.Len() != size {
		return nil, malformed("%s: decompressed %d bytes, expected %d", what, out.Len(), size)
	}
	return out.Bytes(), nil
}
