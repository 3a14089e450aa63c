package mask

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// NormalizedThreshold applies when the brightest pixel is <= 1.0
	NormalizedThreshold = 0.5
	// IntensityThreshold applies to conventional 0-255 masks
	IntensityThreshold = 127.0
)

// BinaryMask is a 2-D foreground/background grid. Every value is 0 or 1.
type BinaryMask struct {
	Width  int
	Height int
	Values [][]uint8 // Values[y][x]
}

// NewBinaryMask allocates an all-background mask
func NewBinaryMask(width, height int) *BinaryMask {
	values := make([][]uint8, height)
	for i := range values {
		values[i] = make([]uint8, width)
	}
	return &BinaryMask{Width: width, Height: height, Values: values}
}

// At returns the label at x, y
func (m *BinaryMask) At(x, y int) uint8 {
	return m.Values[y][x]
}

// Positives counts foreground pixels
func (m *BinaryMask) Positives() int {
	n := 0
	for _, row := range m.Values {
		for _, v := range row {
			if v == 1 {
				n++
			}
		}
	}
	return n
}

// SameShape reports whether both masks have identical dimensions
func (m *BinaryMask) SameShape(other *BinaryMask) bool {
	return m.Width == other.Width && m.Height == other.Height
}

// DecodeError is returned when a mask file cannot be read or decoded
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode mask %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Loader reads mask images from disk and binarizes them
type Loader struct {
	config Config
}

// Config holds configuration for the mask loader
type Config struct {
	// AutoOrient applies EXIF orientation for JPEG masks
	AutoOrient bool
}

// New creates a new Loader with default configuration
func New() *Loader {
	return &Loader{}
}

// NewWithConfig creates a new Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	return &Loader{config: config}
}

// Load decodes the image at path and binarizes it
func (l *Loader) Load(path string) (*BinaryMask, error) {
	img, err := l.decode(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return Binarize(img), nil
}

func (l *Loader) decode(path string) (image.Image, error) {
	var opts []imaging.DecodeOption
	if l.config.AutoOrient {
		opts = append(opts, imaging.AutoOrientation(true))
	}

	img, err := imaging.Open(path, opts...)
	if err == nil {
		return img, nil
	}

	if !strings.HasSuffix(strings.ToLower(path), ".webp") {
		return nil, err
	}

	img, werr := decodeWebP(path)
	if werr != nil {
		return nil, fmt.Errorf("%v (webp: %w)", err, werr)
	}
	return img, nil
}

// decodeWebP reads path with the libwebp decoder. It covers WebP files the
// registered pure-Go decoder rejects, such as extended VP8X containers.
func decodeWebP(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return webp.Decode(f)
}

// Binarize converts img to grayscale and thresholds it. Images whose
// brightest pixel is at most 1.0 are treated as already normalized labels
// and split at 0.5; anything else is treated as 8-bit intensity and split
// at 127.
func Binarize(img image.Image) *BinaryMask {
	gray := Grayscale(img)

	maxValue := 0.0
	for _, row := range gray {
		for _, v := range row {
			if v > maxValue {
				maxValue = v
			}
		}
	}

	threshold := IntensityThreshold
	if maxValue <= 1.0 {
		threshold = NormalizedThreshold
	}

	height := len(gray)
	width := 0
	if height > 0 {
		width = len(gray[0])
	}

	m := NewBinaryMask(width, height)
	for y, row := range gray {
		for x, v := range row {
			if v > threshold {
				m.Values[y][x] = 1
			}
		}
	}
	return m
}

// Grayscale returns the luma of every pixel (ITU-R 601-2 weights) as a
// float grid indexed [y][x], origin at the image's top-left corner.
// 16-bit grayscale values are clipped to 255 rather than scaled down, so
// 0/1 and 0/255 masks stored as 16-bit keep their foreground.
func Grayscale(img image.Image) [][]float64 {
	if img.ColorModel() == color.Gray16Model {
		return clippedGray16(img)
	}

	nrgba := imaging.Grayscale(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		i := y * nrgba.Stride
		for x := 0; x < w; x++ {
			out[y][x] = float64(nrgba.Pix[i])
			i += 4
		}
	}
	return out
}

func clippedGray16(img image.Image) [][]float64 {
	b := img.Bounds()
	out := make([][]float64, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		out[y] = make([]float64, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			out[y][x] = float64(min(c.Y, 255))
		}
	}
	return out
}
