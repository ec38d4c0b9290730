package rimage

import (
	"image"

	"github.com/pkg/errors"

	"go.viam.com/imagefilter/utils"
)

// sobelKernels returns the separable derivative and smoothing kernels of a Sobel
// operator with the given aperture.
func sobelKernels(aperture int) (deriv, smooth []int32, err error) {
	switch aperture {
	case 3:
		return []int32{-1, 0, 1}, []int32{1, 2, 1}, nil
	case 5:
		return []int32{-1, -2, 0, 2, 1}, []int32{1, 4, 6, 4, 1}, nil
	case 7:
		return []int32{-1, -4, -5, 0, 5, 4, 1}, []int32{1, 6, 15, 20, 15, 6, 1}, nil
	default:
		return nil, nil, errors.Errorf("aperture size for the Sobel operator must be 3, 5 or 7, got %d", aperture)
	}
}

// gradient holds the horizontal and vertical derivatives of a single channel image.
// Values are stored row-major, one per pixel.
type gradient struct {
	Width, Height int
	DX, DY        []int32
}

// sobelGradient computes the unnormalized Sobel derivatives of img. Pixels outside the
// image replicate the nearest edge pixel.
func sobelGradient(img *image.Gray, aperture int) (*gradient, error) {
	size := img.Bounds().Size()
	n := size.X * size.Y
	grad := &gradient{Width: size.X, Height: size.Y, DX: make([]int32, n), DY: make([]int32, n)}
	if err := sobelInto(img, aperture, grad, make([]int32, n), make([]int32, n)); err != nil {
		return nil, err
	}
	return grad, nil
}

// sobelInto is sobelGradient writing into caller owned memory. rowDeriv and rowSmooth
// hold the first pass and must have one entry per pixel, as must grad.
func sobelInto(img *image.Gray, aperture int, grad *gradient, rowDeriv, rowSmooth []int32) error {
	deriv, smooth, err := sobelKernels(aperture)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	radius := len(deriv) / 2

	// first pass along rows
	utils.ParallelForEachRow(h, func(y int) {
		row := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < w; x++ {
			var d, s int32
			for k := range deriv {
				px := int32(row[utils.ClampInt(x+k-radius, 0, w-1)])
				d += deriv[k] * px
				s += smooth[k] * px
			}
			rowDeriv[y*w+x] = d
			rowSmooth[y*w+x] = s
		}
	})

	// second pass along columns
	utils.ParallelForEachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			var dx, dy int32
			for k := range deriv {
				yy := utils.ClampInt(y+k-radius, 0, h-1)
				dx += smooth[k] * rowDeriv[yy*w+x]
				dy += deriv[k] * rowSmooth[yy*w+x]
			}
			grad.DX[y*w+x] = dx
			grad.DY[y*w+x] = dy
		}
	})
	return nil
}
