package filter

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/rimage"
	"go.viam.com/imagefilter/rimage/transform"
	"go.viam.com/imagefilter/utils"
)

// DistortionFilterType is the registered type name of DistortionFilter.
const DistortionFilterType = "distortion"

func init() {
	RegisterFilter(DistortionFilterType, func(attributes utils.AttributeMap, logger logging.Logger) (Filter, error) {
		conf := &DistortionConfig{CenterWidth: 0.5, CenterHeight: 0.5}
		decoded, err := utils.TransformAttributeMap[*DistortionConfig](attributes)
		if err != nil {
			return nil, err
		}
		if attributes.Has("center_width") {
			conf.CenterWidth = decoded.CenterWidth
		}
		if attributes.Has("center_height") {
			conf.CenterHeight = decoded.CenterHeight
		}
		conf.DistortionCoefficient = decoded.DistortionCoefficient
		f, err := NewDistortionFilter(conf.CenterWidth, conf.CenterHeight, conf.DistortionCoefficient, logger)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// DistortionConfig holds the attributes of a distortion filter. Missing centers
// default to the middle of the image.
type DistortionConfig struct {
	CenterWidth           float64 `json:"center_width"`
	CenterHeight          float64 `json:"center_height"`
	DistortionCoefficient float64 `json:"distortion_coefficient"`
}

// Validate checks that both centers are fractions of the image.
func (conf *DistortionConfig) Validate() error {
	if !utils.InUnitInterval(conf.CenterWidth) {
		return NewInvalidParameterError(fmt.Sprintf("center_width must be in [0, 1], got %v", conf.CenterWidth))
	}
	if !utils.InUnitInterval(conf.CenterHeight) {
		return NewInvalidParameterError(fmt.Sprintf("center_height must be in [0, 1], got %v", conf.CenterHeight))
	}
	return nil
}

// distortionMaps is a remap table valid for one image size.
type distortionMaps struct {
	size  image.Point
	table *rimage.RemapTable
}

// DistortionFilter applies a single coefficient radial lens distortion around a
// configurable center. The remap tables are built on the first call at a given image
// size and reused until the size changes.
type DistortionFilter struct {
	base
	centerWidth  float64
	centerHeight float64
	coefficient  float64

	maps *distortionMaps
}

// NewDistortionFilter returns a distortion filter. centerWidth and centerHeight are
// fractions of the image width and height. The coefficient is scaled by the square
// of the image width, so the same value bends images of any width alike; positive
// values give barrel distortion and negative values pincushion.
func NewDistortionFilter(centerWidth, centerHeight, coefficient float64, logger logging.Logger) (*DistortionFilter, error) {
	conf := DistortionConfig{CenterWidth: centerWidth, CenterHeight: centerHeight, DistortionCoefficient: coefficient}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &DistortionFilter{
		base:         newBase(DistortionFilterType, false, logger),
		centerWidth:  centerWidth,
		centerHeight: centerHeight,
		coefficient:  coefficient,
	}, nil
}

// MapsValidFor returns the image size the cached remap tables were built for, and
// false when there are none.
func (f *DistortionFilter) MapsValidFor() (image.Point, bool) {
	if f.maps == nil {
		return image.Point{}, false
	}
	return f.maps.size, true
}

// Process writes the distorted src into dst. Pixels whose source falls outside src
// are black.
func (f *DistortionFilter) Process(ctx context.Context, src, dst *image.NRGBA) error {
	ctx, span, err := f.startProcess(ctx, src, dst)
	if err != nil {
		return err
	}
	defer span.End()

	size := src.Bounds().Size()
	if f.maps != nil && f.maps.size != size {
		f.logger.CDebugw(ctx, "image size changed, dropping distortion maps", "from", f.maps.size, "to", size)
		if err := f.dropMaps(); err != nil {
			return err
		}
	}
	if f.maps == nil {
		maps, err := f.buildMaps(size)
		if err != nil {
			return err
		}
		f.logger.CDebugw(ctx, "built distortion maps", "size", size)
		f.maps = maps
	}
	return rimage.Remap(src, dst, f.maps.table, rimage.RemapOptions{
		Interpolation: rimage.InterpolationLinear,
		FillOutliers:  true,
		FillColor:     color.NRGBA{A: 0xff},
	})
}

func (f *DistortionFilter) buildMaps(size image.Point) (*distortionMaps, error) {
	width, height := float64(size.X), float64(size.Y)
	if size.X <= 0 || size.Y <= 0 {
		return nil, NewInvalidParameterError(fmt.Sprintf("cannot distort an empty %dx%d image", size.X, size.Y))
	}
	// the principal point pairs the height fraction with x and the width fraction with y
	intrinsics := &transform.PinholeCameraIntrinsics{
		Width:  size.X,
		Height: size.Y,
		Fx:     1,
		Fy:     1,
		Ppx:    f.centerHeight * height,
		Ppy:    f.centerWidth * width,
	}
	distortion, err := transform.NewDistorter(transform.BrownConradyDistortionType, []float64{f.coefficient / (width * width)})
	if err != nil {
		return nil, errors.Wrap(err, "cannot build distortion model")
	}
	model := &transform.PinholeCameraModel{PinholeCameraIntrinsics: intrinsics, Distortion: distortion}
	mapX, mapY, err := model.InitUndistortRectifyMap()
	if err != nil {
		return nil, err
	}
	table, err := rimage.NewRemapTable(mapX, mapY)
	if err != nil {
		return nil, err
	}
	return &distortionMaps{size: size, table: table}, nil
}

func (f *DistortionFilter) dropMaps() error {
	if f.maps == nil {
		return nil
	}
	err := f.maps.table.Close()
	f.maps = nil
	return err
}

// Duplicate returns a distortion filter with the same parameters and no cached maps.
func (f *DistortionFilter) Duplicate() Filter {
	return &DistortionFilter{
		base:         newBase(DistortionFilterType, false, f.logger),
		centerWidth:  f.centerWidth,
		centerHeight: f.centerHeight,
		coefficient:  f.coefficient,
	}
}

// Close drops the remap tables along with the scratch buffers.
func (f *DistortionFilter) Close() error {
	return multierr.Combine(f.dropMaps(), f.base.Close())
}
