// Package rimage holds the pixel primitives the filters are built from: channel
// split and merge, uniform fill, Canny edge detection, color maps and remapping.
//
// Color images are *image.NRGBA with an opaque alpha channel; single channel
// images are *image.Gray. Primitives address pixels relative to each image's
// bounds, so sub-images work as long as the sizes match.
package rimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"go.viam.com/imagefilter/utils"
)

// NewColorImage returns an opaque black color image of the given size.
func NewColorImage(size image.Point) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// NewGrayImage returns a zeroed single channel image of the given size.
func NewGrayImage(size image.Point) *image.Gray {
	return image.NewGray(image.Rect(0, 0, size.X, size.Y))
}

// ConvertToColorImage converts any image into the color image layout used by the
// filters. The result always has its origin at (0, 0).
func ConvertToColorImage(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}
	return imaging.Clone(img)
}

// SizeMismatchError is returned by primitives whose inputs must share a size.
func SizeMismatchError(op string, want, got image.Point) error {
	return errors.Errorf("%s: size mismatch, expected %dx%d but got %dx%d", op, want.X, want.Y, got.X, got.Y)
}

// Split copies the three color channels of src into r, g and b.
func Split(src *image.NRGBA, r, g, b *image.Gray) error {
	size := src.Bounds().Size()
	for _, plane := range []*image.Gray{r, g, b} {
		if plane == nil {
			return errors.New("split: nil destination plane")
		}
		if planeSize := plane.Bounds().Size(); planeSize != size {
			return SizeMismatchError("split", size, planeSize)
		}
	}
	sb, rb, gb, bb := src.Bounds(), r.Bounds(), g.Bounds(), b.Bounds()
	utils.ParallelForEachRow(size.Y, func(y int) {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		ri := r.PixOffset(rb.Min.X, rb.Min.Y+y)
		gi := g.PixOffset(gb.Min.X, gb.Min.Y+y)
		bi := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		for x := 0; x < size.X; x++ {
			r.Pix[ri+x] = src.Pix[si]
			g.Pix[gi+x] = src.Pix[si+1]
			b.Pix[bi+x] = src.Pix[si+2]
			si += 4
		}
	})
	return nil
}

// Merge combines r, g and b into dst, writing an opaque alpha.
func Merge(r, g, b *image.Gray, dst *image.NRGBA) error {
	size := dst.Bounds().Size()
	for _, plane := range []*image.Gray{r, g, b} {
		if plane == nil {
			return errors.New("merge: nil source plane")
		}
		if planeSize := plane.Bounds().Size(); planeSize != size {
			return SizeMismatchError("merge", size, planeSize)
		}
	}
	db, rb, gb, bb := dst.Bounds(), r.Bounds(), g.Bounds(), b.Bounds()
	utils.ParallelForEachRow(size.Y, func(y int) {
		di := dst.PixOffset(db.Min.X, db.Min.Y+y)
		ri := r.PixOffset(rb.Min.X, rb.Min.Y+y)
		gi := g.PixOffset(gb.Min.X, gb.Min.Y+y)
		bi := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		for x := 0; x < size.X; x++ {
			dst.Pix[di] = r.Pix[ri+x]
			dst.Pix[di+1] = g.Pix[gi+x]
			dst.Pix[di+2] = b.Pix[bi+x]
			dst.Pix[di+3] = 0xff
			di += 4
		}
	})
	return nil
}

// Fill sets every pixel of dst to c.
func Fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Equal reports whether two color images have the same size and pixels.
func Equal(a, b *image.NRGBA) bool {
	size := a.Bounds().Size()
	if size != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < size.Y; y++ {
		ai := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		bi := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		for x := 0; x < size.X*4; x++ {
			if a.Pix[ai+x] != b.Pix[bi+x] {
				return false
			}
		}
	}
	return true
}
