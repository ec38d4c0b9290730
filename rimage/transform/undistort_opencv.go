//go:build !no_cgo

package transform

import (
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

func (params *PinholeCameraModel) initUndistortRectifyMap() (*mat.Dense, *mat.Dense, error) {
	coeffs, ok := brownConradyCoefficients(params.Distortion)
	if !ok {
		return params.undistortMapsGo()
	}
	cameraMatrix := togocv(params.GetCameraMatrix())
	defer cameraMatrix.Close()
	distCoeffs := togocv(mat.NewDense(1, len(coeffs), coeffs))
	defer distCoeffs.Close()
	// an empty rectification is the identity
	rectification := gocv.NewMat()
	defer rectification.Close()

	mapX, mapY := gocv.NewMat(), gocv.NewMat()
	defer mapX.Close()
	defer mapY.Close()
	gocv.InitUndistortRectifyMap(cameraMatrix, distCoeffs, rectification, cameraMatrix,
		image.Pt(params.Width, params.Height), int(gocv.MatTypeCV32F), mapX, mapY)
	return togonum(&mapX), togonum(&mapY), nil
}

func togocv(input mat.Matrix) gocv.Mat {
	rows, cols := input.Dims()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.SetDoubleAt(r, c, input.At(r, c))
		}
	}
	return m
}

// togonum reads a single channel float32 Mat.
func togonum(m *gocv.Mat) *mat.Dense {
	d := mat.NewDense(m.Rows(), m.Cols(), nil)
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			d.Set(r, c, float64(m.GetFloatAt(r, c)))
		}
	}
	return d
}
