package source

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/ivlev/imgforensics/internal/pixel"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 90, A: 255})
		}
	}
	return img
}

func writeFile(t *testing.T, path string, encode func(f *os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f))
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	img := testImage()

	writeFile(t, filepath.Join(dir, "b.png"), func(f *os.File) error { return png.Encode(f, img) })
	writeFile(t, filepath.Join(dir, "a.bmp"), func(f *os.File) error { return bmp.Encode(f, img) })
	writeFile(t, filepath.Join(dir, "c.jpg"), func(f *os.File) error {
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, 3, src.PageCount())
	assert.Equal(t, filepath.Join(dir, "a.bmp"), src.PageName(0))
	assert.Equal(t, filepath.Join(dir, "c.jpg"), src.PageName(2))

	for i := 0; i < src.PageCount(); i++ {
		w, h, err := src.PageSize(i, 300)
		require.NoError(t, err)
		assert.Equal(t, 24, w)
		assert.Equal(t, 16, h)

		decoded, err := src.RenderPage(i, 300)
		require.NoError(t, err, src.PageName(i))
		assert.Equal(t, 24, decoded.Bounds().Dx())
		assert.Equal(t, 16, decoded.Bounds().Dy())

		buf := pixel.FromImage(decoded)
		require.NoError(t, buf.Validate())
		assert.Equal(t, 3, buf.Channels())
	}

	// lossless formats round-trip exactly
	buf := pixel.FromImage(mustRender(t, src, 0))
	assert.Equal(t, float32(50), buf.At(5, 3, 0))
	assert.Equal(t, float32(30), buf.At(5, 3, 1))
	assert.Equal(t, float32(90), buf.At(5, 3, 2))
}

func mustRender(t *testing.T, src Source, index int) image.Image {
	t.Helper()
	img, err := src.RenderPage(index, 0)
	require.NoError(t, err)
	return img
}

func TestImageSourceSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray.png")
	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	gray.SetGray(1, 1, color.Gray{Y: 77})
	writeFile(t, path, func(f *os.File) error { return png.Encode(f, gray) })

	src, err := NewImageSource(path)
	require.NoError(t, err)
	require.Equal(t, 1, src.PageCount())

	buf := pixel.FromImage(mustRender(t, src, 0))
	assert.Equal(t, 1, buf.Channels())
	assert.Equal(t, float32(77), buf.At(1, 1, 0))
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0644))
	src, err := Open(path)
	require.NoError(t, err)
	_, err = src.RenderPage(0, 0)
	assert.Error(t, err)
}

func TestPDFPageName(t *testing.T) {
	src := &FitzPDFSource{path: "scans/contract.pdf"}
	assert.Equal(t, "scans/contract.pdf#1", src.PageName(0))
	assert.Equal(t, "scans/contract.pdf#3", src.PageName(2))
}
