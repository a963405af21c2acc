// Package recompress measures how an image reacts to being saved again as
// JPEG at a range of qualities. An image that was already JPEG-compressed
// changes least when recompressed near its previous quality, which shows up
// as a dip (a "JPEG ghost") in the difference curve.
package recompress

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	"github.com/gen2brain/jpegn"
	"golang.org/x/image/draw"

	"github.com/ivlev/imgforensics/internal/faults"
	"github.com/ivlev/imgforensics/internal/pixel"
)

// DefaultQualities are the qualities probed by Curve, highest first.
var DefaultQualities = []int{95, 90, 85, 80, 75, 70, 65, 60, 55, 50}

// HeatmapQuality is the quality used for the difference map when no ghost
// is found.
const HeatmapQuality = 70

// ELAQuality is the default quality of error level analysis.
const ELAQuality = 75

type Point struct {
	Quality int     `yaml:"quality"`
	Diff    float64 `yaml:"diff"`
}

// Curve recompresses img at every quality and returns the mean absolute
// sample difference between img and each round trip.
func Curve(ctx context.Context, img image.Image, qualities []int) ([]Point, error) {
	if len(qualities) == 0 {
		return nil, faults.InvalidConfig("no qualities to probe")
	}

	src := normalize(img)
	orig := pixel.FromImage(src)

	points := make([]Point, 0, len(qualities))
	for _, q := range qualities {
		if err := ctx.Err(); err != nil {
			return nil, faults.Cancelled(err)
		}
		dec, err := roundTrip(src, q)
		if err != nil {
			return nil, err
		}
		d, err := meanAbsDiff(orig, dec)
		if err != nil {
			return nil, err
		}
		points = append(points, Point{Quality: q, Diff: d})
	}
	return points, nil
}

// DiffBuffer returns |img - recompressed(img)| per sample at quality.
func DiffBuffer(img image.Image, quality int) (*pixel.Buffer, error) {
	src := normalize(img)
	orig := pixel.FromImage(src)
	dec, err := roundTrip(src, quality)
	if err != nil {
		return nil, err
	}
	if err := sameShape(orig, dec); err != nil {
		return nil, err
	}

	w, h := orig.Size()
	ch := orig.Channels()
	samples := make([]float32, 0, w*h*ch)
	for y := 0; y < h; y++ {
		a, b := orig.Scanline(y), dec.Scanline(y)
		for i := range a {
			samples = append(samples, float32(math.Abs(float64(a[i]-b[i]))))
		}
	}
	return pixel.NewPacked(w, h, ch, samples)
}

// EstimateQuality finds the deepest local minimum of the curve. dip is how
// far that minimum lies below the mean of its two neighbors, relative to
// that mean. quality is 0 when the curve has no local minimum.
func EstimateQuality(curve []Point) (quality int, dip float64) {
	for i := 1; i < len(curve)-1; i++ {
		prev, cur, next := curve[i-1].Diff, curve[i].Diff, curve[i+1].Diff
		if cur >= prev || cur >= next {
			continue
		}
		m := (prev + next) / 2
		if d := (m - cur) / m; d > dip {
			dip = d
			quality = curve[i].Quality
		}
	}
	return quality, dip
}

// normalize converts img to a form the JPEG encoder writes without changing
// the channel count: Gray stays Gray, Gray16 drops to Gray, anything else
// becomes opaque RGBA with the stored color channels (alpha dropped, as in
// pixel.FromImage).
func normalize(img image.Image) image.Image {
	b := img.Bounds()
	switch img.(type) {
	case *image.Gray:
		return img
	case *image.Gray16:
		g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
		return g
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			rgba.Set(x, y, pixel.DropAlpha(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return rgba
}

func roundTrip(img image.Image, quality int) (*pixel.Buffer, error) {
	if quality < 1 || quality > 100 {
		return nil, faults.InvalidConfig("jpeg quality must be in [1, 100], got %d", quality)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode q=%d: %w", quality, err)
	}
	dec, err := jpegn.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode q=%d: %w", quality, err)
	}
	return pixel.FromImage(dec), nil
}

func sameShape(a, b *pixel.Buffer) error {
	aw, ah := a.Size()
	bw, bh := b.Size()
	if aw != bw || ah != bh || a.Channels() != b.Channels() {
		return faults.MalformedInput("round trip changed shape: %dx%dx%d -> %dx%dx%d",
			aw, ah, a.Channels(), bw, bh, b.Channels())
	}
	return nil
}

func meanAbsDiff(a, b *pixel.Buffer) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}
	_, h := a.Size()
	var sum float64
	var n int
	for y := 0; y < h; y++ {
		la, lb := a.Scanline(y), b.Scanline(y)
		for i := range la {
			sum += math.Abs(float64(la[i] - lb[i]))
		}
		n += len(la)
	}
	return sum / float64(n), nil
}
