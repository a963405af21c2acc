package pixel

import (
	"image"
	"image/color"
)

// FromImage converts a decoded image into a packed Buffer.
// Gray and Gray16 images become single-channel buffers; everything else
// becomes RGB with alpha dropped: the stored color channels are kept as they
// are, not composited onto black. 8-bit values map exactly onto 0..255,
// 16-bit values keep their extra precision as a fraction.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		samples := make([]float32, w*h)
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := src.Pix[off : off+w]
			for x, v := range row {
				samples[y*w+x] = float32(v)
			}
		}
		return &Buffer{width: w, height: h, channels: 1, stride: w, samples: samples}

	case *image.Gray16:
		samples := make([]float32, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				samples[y*w+x] = float32(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y) / 257
			}
		}
		return &Buffer{width: w, height: h, channels: 1, stride: w, samples: samples}

	case *image.NRGBA:
		samples := make([]float32, w*h*3)
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := src.Pix[off : off+w*4]
			for x := 0; x < w; x++ {
				i := (y*w + x) * 3
				samples[i] = float32(row[x*4])
				samples[i+1] = float32(row[x*4+1])
				samples[i+2] = float32(row[x*4+2])
			}
		}
		return &Buffer{width: w, height: h, channels: 3, stride: w * 3, samples: samples}
	}

	samples := make([]float32, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := DropAlpha(img.At(bounds.Min.X+x, bounds.Min.Y+y)).RGBA()
			i := (y*w + x) * 3
			samples[i] = float32(r) / 257
			samples[i+1] = float32(g) / 257
			samples[i+2] = float32(b) / 257
		}
	}
	return &Buffer{width: w, height: h, channels: 3, stride: w * 3, samples: samples}
}

// DropAlpha returns c as an opaque color with the color channels c stores.
// Non-premultiplied colors keep their raw channels; premultiplied ones
// (color.RGBA and friends) can only give back their premultiplied values.
func DropAlpha(c color.Color) color.RGBA64 {
	switch v := c.(type) {
	case color.NRGBA:
		return color.RGBA64{R: uint16(v.R) * 0x101, G: uint16(v.G) * 0x101, B: uint16(v.B) * 0x101, A: 0xffff}
	case color.NRGBA64:
		return color.RGBA64{R: v.R, G: v.G, B: v.B, A: 0xffff}
	}
	r, g, b, _ := c.RGBA()
	return color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: 0xffff}
}
