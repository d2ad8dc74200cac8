// Package heightmap decodes terrain elevation images into byte grids.
package heightmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // PNG decoder registration
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
)

// Heightmap errors.
var (
	ErrEmpty        = errors.New("heightmap has zero size")
	ErrSizeMismatch = errors.New("heightmap data does not match dimensions")
)

// Channel selects which image channel carries elevation.
type Channel uint8

// Channel constants.
const (
	ChannelAlpha Channel = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelLuma
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelAlpha:
		return "alpha"
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	case ChannelLuma:
		return "luma"
	default:
		return fmt.Sprintf("Channel(%d)", c)
	}
}

// ParseChannel converts a channel name to a Channel.
func ParseChannel(name string) (Channel, error) {
	switch name {
	case "", "alpha", "a":
		return ChannelAlpha, nil
	case "red", "r":
		return ChannelRed, nil
	case "green", "g":
		return ChannelGreen, nil
	case "blue", "b":
		return ChannelBlue, nil
	case "luma", "gray", "grey":
		return ChannelLuma, nil
	}
	return 0, fmt.Errorf("unknown heightmap channel %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler (used by YAML configs).
func (c *Channel) UnmarshalText(text []byte) error {
	ch, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// WrapMode controls vertical addressing. Columns always wrap (cylinder seam).
type WrapMode uint8

const (
	WrapClamp  WrapMode = iota // rows clamp to [0, H-1]
	WrapRepeat                 // rows wrap around like columns
)

// String returns the wrap mode name.
func (w WrapMode) String() string {
	if w == WrapRepeat {
		return "repeat"
	}
	return "clamp"
}

// ParseWrapMode converts "clamp" or "repeat" to a WrapMode.
func ParseWrapMode(name string) (WrapMode, error) {
	switch name {
	case "", "clamp":
		return WrapClamp, nil
	case "repeat", "wrap":
		return WrapRepeat, nil
	}
	return 0, fmt.Errorf("unknown wrap mode %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WrapMode) UnmarshalText(text []byte) error {
	m, err := ParseWrapMode(string(text))
	if err != nil {
		return err
	}
	*w = m
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (w WrapMode) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// HeightMap is an immutable row-major grid of elevation bytes.
type HeightMap struct {
	width  int
	height int
	data   []byte
	wrap   WrapMode
}

// New creates a heightmap from raw bytes. The slice is copied.
func New(width, height int, data []byte) (*HeightMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrSizeMismatch, width, height, width*height, len(data))
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &HeightMap{width: width, height: height, data: buf}, nil
}

// Fill creates a heightmap where every texel has the same value.
func Fill(width, height int, value byte) (*HeightMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}
	data := make([]byte, width*height)
	for i := range data {
		data[i] = value
	}
	return &HeightMap{width: width, height: height, data: data}, nil
}

// FromRGBA extracts one channel from tightly packed RGBA8 pixels.
func FromRGBA(width, height int, pix []byte, ch Channel) (*HeightMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: %dx%d RGBA needs %d bytes, got %d",
			ErrSizeMismatch, width, height, width*height*4, len(pix))
	}
	data := make([]byte, width*height)
	for i := range data {
		r, g, b, a := pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3]
		data[i] = pick(ch, r, g, b, a)
	}
	return &HeightMap{width: width, height: height, data: data}, nil
}

// FromImage extracts one channel of a decoded image.
func FromImage(img image.Image, ch Channel) (*HeightMap, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}

	// Fast path for the common decoder output
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == width*4 {
		return FromRGBA(width, height, nrgba.Pix[:width*height*4], ch)
	}

	data := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			data[y*width+x] = pick(ch, c.R, c.G, c.B, c.A)
		}
	}
	return &HeightMap{width: width, height: height, data: data}, nil
}

// Decode reads a PNG, BMP or TIFF image and extracts the elevation channel.
func Decode(r io.Reader, ch Channel) (*HeightMap, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap: %w", err)
	}
	hm, err := FromImage(img, ch)
	if err != nil {
		return nil, fmt.Errorf("reading %s heightmap: %w", format, err)
	}
	return hm, nil
}

// Load decodes a heightmap image from disk.
func Load(path string, ch Channel) (*HeightMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, ch)
}

func pick(ch Channel, r, g, b, a uint8) byte {
	switch ch {
	case ChannelRed:
		return r
	case ChannelGreen:
		return g
	case ChannelBlue:
		return b
	case ChannelLuma:
		// Rec. 601 weights, same as color.GrayModel
		y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
		return byte(y)
	default:
		return a
	}
}

// WithWrap returns a view of the same data with a different vertical wrap mode.
func (h *HeightMap) WithWrap(mode WrapMode) *HeightMap {
	view := *h
	view.wrap = mode
	return &view
}

// Width returns the number of columns.
func (h *HeightMap) Width() int { return h.width }

// Height returns the number of rows.
func (h *HeightMap) Height() int { return h.height }

// Wrap returns the vertical wrap mode.
func (h *HeightMap) Wrap() WrapMode { return h.wrap }

// Index returns the data offset of (x, y) after wrapping.
func (h *HeightMap) Index(x, y int) int {
	x = mod(x, h.width)
	if h.wrap == WrapRepeat {
		y = mod(y, h.height)
	} else {
		y = clampi(y, 0, h.height-1)
	}
	return y*h.width + x
}

// At returns the elevation at (x, y). Columns wrap; rows follow the wrap mode.
func (h *HeightMap) At(x, y int) byte {
	return h.data[h.Index(x, y)]
}

// Ratio returns At(x, y) scaled to [0, 1].
func (h *HeightMap) Ratio(x, y int) float32 {
	return float32(h.At(x, y)) / 255
}

// Stats summarizes the elevation values.
type Stats struct {
	Min, Max byte
	Mean     float64
}

// Stats computes min, max and mean elevation.
func (h *HeightMap) Stats() Stats {
	s := Stats{Min: 255}
	var sum uint64
	for _, v := range h.data {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += uint64(v)
	}
	s.Mean = float64(sum) / float64(len(h.data))
	return s
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
