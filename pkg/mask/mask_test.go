package mask

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// createGrayMask draws a width x height mask whose top rows are fg and the rest bg
func createGrayMask(width, height, fgRows int, fg, bg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := bg
			if y < fgRows {
				v = fg
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestBinarizeAutoDetectsThreshold(t *testing.T) {
	normalized := Binarize(createGrayMask(4, 4, 2, 1, 0))
	intensity := Binarize(createGrayMask(4, 4, 2, 255, 0))

	require.Equal(t, intensity, normalized)
	require.Equal(t, 8, normalized.Positives())
	require.Equal(t, uint8(1), normalized.At(3, 1))
	require.Equal(t, uint8(0), normalized.At(0, 2))
}

func TestBinarizeIntensityEdges(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.SetGray(0, 0, color.Gray{Y: 127})
	img.SetGray(1, 0, color.Gray{Y: 128})
	img.SetGray(2, 0, color.Gray{Y: 2})

	m := Binarize(img)
	require.Equal(t, [][]uint8{{0, 1, 0}}, m.Values)
}

func TestBinarizeAllZero(t *testing.T) {
	m := Binarize(image.NewGray(image.Rect(0, 0, 5, 3)))
	require.Equal(t, 5, m.Width)
	require.Equal(t, 3, m.Height)
	require.Zero(t, m.Positives())
}

func TestBinarizeConvertsColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})
	img.Set(1, 0, color.RGBA{255, 0, 0, 255}) // luma ~76
	img.Set(0, 1, color.RGBA{0, 255, 0, 255}) // luma ~150
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	m := Binarize(img)
	require.Equal(t, [][]uint8{{1, 0}, {1, 0}}, m.Values)
}

func TestBinarizeOffsetBounds(t *testing.T) {
	img := createGrayMask(4, 4, 2, 255, 0)
	sub := img.SubImage(image.Rect(1, 1, 4, 4))

	m := Binarize(sub)
	require.Equal(t, 3, m.Width)
	require.Equal(t, 3, m.Height)
	require.Equal(t, [][]uint8{{1, 1, 1}, {0, 0, 0}, {0, 0, 0}}, m.Values)
}

func TestGrayscale(t *testing.T) {
	gray := Grayscale(createGrayMask(2, 2, 1, 200, 10))
	require.Equal(t, [][]float64{{200, 200}, {10, 10}}, gray)
}

func TestLoadPNG(t *testing.T) {
	dir := t.TempDir()
	zeroOne := filepath.Join(dir, "zero_one.png")
	full := filepath.Join(dir, "full_range.png")
	require.NoError(t, imaging.Save(createGrayMask(6, 4, 1, 1, 0), zeroOne))
	require.NoError(t, imaging.Save(createGrayMask(6, 4, 1, 255, 0), full))

	loader := New()
	a, err := loader.Load(zeroOne)
	require.NoError(t, err)
	b, err := loader.Load(full)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Equal(t, 6, a.Positives())
}

func TestLoadJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.jpg")
	require.NoError(t, imaging.Save(createGrayMask(16, 16, 8, 255, 0), path, imaging.JPEGQuality(100)))

	m, err := New().Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, m.Width)
	require.Equal(t, 16, m.Height)
	require.Equal(t, 16*8, m.Positives())
}

func TestLoadGray16(t *testing.T) {
	for _, fg := range []uint16{1, 255, 40000} {
		img := image.NewGray16(image.Rect(0, 0, 4, 4))
		for x := 0; x < 4; x++ {
			img.SetGray16(x, 0, color.Gray16{Y: fg})
		}

		path := filepath.Join(t.TempDir(), "mask16.png")
		require.NoError(t, imaging.Save(img, path))

		m, err := New().Load(path)
		require.NoError(t, err)
		require.Equal(t, 4, m.Positives(), "fg=%d", fg)
		require.Equal(t, [][]uint8{{1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, m.Values, "fg=%d", fg)
	}
}

func TestGrayscaleGray16Clips(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 1})
	img.SetGray16(1, 0, color.Gray16{Y: 200})
	img.SetGray16(2, 0, color.Gray16{Y: 65535})

	require.Equal(t, [][]float64{{1, 200, 255}}, Grayscale(img))
}

func TestLoadWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.webp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, webp.Encode(f, createGrayMask(8, 8, 4, 255, 0), &webp.Options{Lossless: true}))
	require.NoError(t, f.Close())

	want := createGrayMask(8, 8, 4, 255, 0)

	// libwebp decoder used when the registered decoder rejects a file
	img, err := decodeWebP(path)
	require.NoError(t, err)
	require.Equal(t, Binarize(want), Binarize(img))

	m, err := New().Load(path)
	require.NoError(t, err)
	require.Equal(t, 32, m.Positives())
}

func TestLoadBrokenWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.webp")
	require.NoError(t, os.WriteFile(path, []byte("RIFF0000WEBPjunk"), 0644))

	_, err := New().Load(path)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Contains(t, err.Error(), "webp:")
}

func TestLoadInvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := New().Load(path)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	require.Equal(t, path, decodeErr.Path)
	require.Contains(t, err.Error(), "broken.png")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "missing.png"))

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSameShape(t *testing.T) {
	require.True(t, NewBinaryMask(3, 2).SameShape(NewBinaryMask(3, 2)))
	require.False(t, NewBinaryMask(3, 2).SameShape(NewBinaryMask(2, 3)))
}

func BenchmarkBinarize(b *testing.B) {
	img := createGrayMask(512, 512, 256, 255, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Binarize(img)
	}
}
