package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/imagefilter/utils"
)

// Interpolation selects how Remap samples between source pixels.
type Interpolation int

const (
	// InterpolationNearest takes the closest source pixel.
	InterpolationNearest Interpolation = iota
	// InterpolationLinear blends the four surrounding source pixels.
	InterpolationLinear
)

// RemapOptions controls sampling and what happens to destination pixels whose
// source location falls outside the source image.
type RemapOptions struct {
	Interpolation Interpolation
	// FillOutliers treats everything outside the source as FillColor, so outliers
	// get FillColor and pixels straddling the border blend with it. Otherwise any
	// pixel that needs a sample from outside keeps whatever dst held before the call.
	FillOutliers bool
	FillColor    color.NRGBA
}

// RemapTable is a pair of coordinate maps for Remap: destination pixel (x, y) samples
// the source at (X(y, x), Y(y, x)). A table may cache native copies of the maps, so
// close it once it is no longer needed and do not modify X or Y after first use.
type RemapTable struct {
	X, Y *mat.Dense

	closed bool
	native remapNative
}

// NewRemapTable checks that the maps agree in shape and wraps them.
func NewRemapTable(mapX, mapY *mat.Dense) (*RemapTable, error) {
	if mapX == nil || mapY == nil {
		return nil, errors.New("remap: nil map")
	}
	xr, xc := mapX.Dims()
	yr, yc := mapY.Dims()
	if xr != yr || xc != yc {
		return nil, SizeMismatchError("remap table", image.Pt(xc, xr), image.Pt(yc, yr))
	}
	return &RemapTable{X: mapX, Y: mapY}, nil
}

// Size returns the destination size the table serves.
func (t *RemapTable) Size() image.Point {
	rows, cols := t.X.Dims()
	return image.Pt(cols, rows)
}

// Close releases any native memory held by the table. Closing twice is a no-op.
func (t *RemapTable) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.native.close()
}

// Remap writes dst(x, y) = src(table.X(y, x), table.Y(y, x)). The table must match the
// destination size. src and dst must not alias.
func Remap(src, dst *image.NRGBA, table *RemapTable, opts RemapOptions) error {
	if table == nil {
		return errors.New("remap: nil table")
	}
	if table.closed {
		return errors.New("remap: table is closed")
	}
	size := dst.Bounds().Size()
	if tableSize := table.Size(); tableSize != size {
		return SizeMismatchError("remap", size, tableSize)
	}
	if opts.Interpolation != InterpolationNearest && opts.Interpolation != InterpolationLinear {
		return errors.Errorf("remap: unknown interpolation %d", opts.Interpolation)
	}
	if srcSize := src.Bounds().Size(); size.X == 0 || size.Y == 0 || srcSize.X == 0 || srcSize.Y == 0 {
		if opts.FillOutliers {
			Fill(dst, opts.FillColor)
		}
		return nil
	}
	return remap(src, dst, table, opts)
}

// remapGo is the pure Go remap kernel.
func remapGo(src, dst *image.NRGBA, table *RemapTable, opts RemapOptions) {
	size := dst.Bounds().Size()
	db := dst.Bounds()
	fill := [4]uint8{opts.FillColor.R, opts.FillColor.G, opts.FillColor.B, opts.FillColor.A}
	utils.ParallelForEachRow(size.Y, func(y int) {
		di := dst.PixOffset(db.Min.X, db.Min.Y+y)
		for x := 0; x < size.X; x++ {
			p := r2.Point{X: table.X.At(y, x), Y: table.Y.At(y, x)}
			var c [4]uint8
			var ok bool
			if opts.Interpolation == InterpolationNearest {
				c, ok = nearestColor(src, p, fill, opts.FillOutliers)
			} else {
				c, ok = bilinearColor(src, p, fill, opts.FillOutliers)
			}
			if ok {
				copy(dst.Pix[di:di+4], c[:])
			}
			di += 4
		}
	})
}

// pixelAt returns the four channels at (x, y) relative to the image origin.
func pixelAt(img *image.NRGBA, x, y int) []uint8 {
	b := img.Bounds()
	i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
	return img.Pix[i : i+4 : i+4]
}

// nearestColor returns the pixel closest to p. The boolean is false when p is
// outside and useFill is not set.
func nearestColor(img *image.NRGBA, p r2.Point, fill [4]uint8, useFill bool) ([4]uint8, bool) {
	size := img.Bounds().Size()
	rx, ry := math.Round(p.X), math.Round(p.Y)
	// written so that NaN coordinates count as outside
	if !(rx >= 0 && ry >= 0 && rx <= float64(size.X-1) && ry <= float64(size.Y-1)) {
		return fill, useFill
	}
	var out [4]uint8
	copy(out[:], pixelAt(img, int(rx), int(ry)))
	return out, true
}

// bilinearColor blends the up to four pixels around p. Neighbors outside the image
// read as fill when useFill is set; otherwise the boolean is false.
func bilinearColor(img *image.NRGBA, p r2.Point, fill [4]uint8, useFill bool) ([4]uint8, bool) {
	size := img.Bounds().Size()
	if !(p.X > -1 && p.Y > -1 && p.X < float64(size.X) && p.Y < float64(size.Y)) {
		return fill, useFill
	}
	origin := r2.Point{X: math.Floor(p.X), Y: math.Floor(p.Y)}
	frac := p.Sub(origin)
	x0, y0 := int(origin.X), int(origin.Y)
	// a neighbor with zero weight is never read
	x1, y1 := x0, y0
	if frac.X > 0 {
		x1++
	}
	if frac.Y > 0 {
		y1++
	}

	var corners [4][4]uint8
	for i, q := range [4]image.Point{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		if q.X < 0 || q.Y < 0 || q.X >= size.X || q.Y >= size.Y {
			if !useFill {
				return [4]uint8{}, false
			}
			corners[i] = fill
			continue
		}
		copy(corners[i][:], pixelAt(img, q.X, q.Y))
	}
	var out [4]uint8
	for ch := 0; ch < 4; ch++ {
		top := float64(corners[0][ch])*(1-frac.X) + float64(corners[1][ch])*frac.X
		bottom := float64(corners[2][ch])*(1-frac.X) + float64(corners[3][ch])*frac.X
		out[ch] = utils.RoundToUint8(top*(1-frac.Y) + bottom*frac.Y)
	}
	return out, true
}
