//go:build no_cgo

package transform

import "gonum.org/v1/gonum/mat"

func (params *PinholeCameraModel) initUndistortRectifyMap() (*mat.Dense, *mat.Dense, error) {
	return params.undistortMapsGo()
}
