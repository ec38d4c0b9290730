package transform

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/imagefilter/utils"
)

// PinholeCameraModel is the model of a pinhole camera.
type PinholeCameraModel struct {
	*PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion               Distorter `json:"distortion"`
}

// CheckValid checks both the intrinsics and, when present, the distortion model.
func (params *PinholeCameraModel) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("camera model does not exist")
	}
	if err := params.PinholeCameraIntrinsics.CheckValid(); err != nil {
		return err
	}
	if params.Distortion != nil {
		return params.Distortion.CheckValid()
	}
	return nil
}

// InitUndistortRectifyMap builds the pair of remap matrices that undistort an image of the
// model's size, using the identity rectification and the model's own camera matrix as the
// new camera matrix. mapX(v, u) and mapY(v, u) hold the source pixel that destination pixel
// (u, v) should be sampled from. Rows are image rows.
func (params *PinholeCameraModel) InitUndistortRectifyMap() (*mat.Dense, *mat.Dense, error) {
	if err := params.CheckValid(); err != nil {
		return nil, nil, err
	}
	return params.initUndistortRectifyMap()
}

// brownConradyCoefficients returns the distortion in OpenCV's (k1, k2, p1, p2, k3) order. A
// nil distortion is all zeros; any other model reports false.
func brownConradyCoefficients(d Distorter) ([]float64, bool) {
	if d == nil {
		return make([]float64, 5), true
	}
	if d.ModelType() != BrownConradyDistortionType {
		return nil, false
	}
	p := d.Parameters()
	if len(p) < 5 {
		return make([]float64, 5), true
	}
	return []float64{p[0], p[1], p[3], p[4], p[2]}, true
}

// undistortMapsGo is the pure Go map builder.
func (params *PinholeCameraModel) undistortMapsGo() (*mat.Dense, *mat.Dense, error) {
	width, height := params.Width, params.Height

	mapX := mat.NewDense(height, width, nil)
	mapY := mat.NewDense(height, width, nil)
	utils.ParallelForEachRow(height, func(v int) {
		fv := float64(v)
		for u := 0; u < width; u++ {
			fu := float64(u)
			x, y := params.PixelToNormalized(fu, fv)
			// Store the pixel plus the projected displacement so that a zero
			// distortion yields exact integer coordinates.
			var dx, dy float64
			if params.Distortion != nil {
				xd, yd := params.Distortion.Transform(x, y)
				dx, dy = xd-x, yd-y
			}
			mapX.Set(v, u, fu+params.Fx*dx)
			mapY.Set(v, u, fv+params.Fy*dy)
		}
	})
	return mapX, mapY, nil
}
