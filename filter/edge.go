package filter

import (
	"context"
	"image"

	"go.uber.org/multierr"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/rimage"
	"go.viam.com/imagefilter/utils"
)

// EdgeFilterType is the registered type name of EdgeFilter.
const EdgeFilterType = "edge"

func init() {
	RegisterFilter(EdgeFilterType, func(attributes utils.AttributeMap, logger logging.Logger) (Filter, error) {
		conf, err := utils.TransformAttributeMap[*EdgeConfig](attributes)
		if err != nil {
			return nil, err
		}
		if !attributes.Has("aperture_size") {
			conf.ApertureSize = DefaultApertureSize
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		return NewEdgeFilter(conf.LowThreshold, conf.HighThreshold, conf.ApertureSize, logger), nil
	})
}

// DefaultApertureSize is the Sobel aperture used when a config does not set one.
const DefaultApertureSize = 3

// EdgeConfig holds the attributes of an edge filter.
type EdgeConfig struct {
	LowThreshold  float64 `json:"low_threshold"`
	HighThreshold float64 `json:"high_threshold"`
	ApertureSize  int     `json:"aperture_size"`
}

// Validate checks that the aperture is one the edge detector supports.
func (conf *EdgeConfig) Validate() error {
	switch conf.ApertureSize {
	case 3, 5, 7:
		return nil
	default:
		return NewInvalidParameterError("aperture_size must be 3, 5 or 7")
	}
}

// EdgeFilter runs Canny edge detection on each color channel separately and recombines
// the three edge maps, so an edge in any channel shows up in that channel's color.
type EdgeFilter struct {
	base
	lowThreshold  float64
	highThreshold float64
	apertureSize  int

	// one Canny workspace per color channel
	workspaces *BufferFactory[*rimage.CannyWorkspace]
}

// NewEdgeFilter returns an edge filter. The thresholds and aperture are passed to the
// detector as is; an unsupported aperture is reported by Process.
func NewEdgeFilter(lowThreshold, highThreshold float64, apertureSize int, logger logging.Logger) *EdgeFilter {
	return &EdgeFilter{
		base:          newBase(EdgeFilterType, true, logger),
		lowThreshold:  lowThreshold,
		highThreshold: highThreshold,
		apertureSize:  apertureSize,
	}
}

// Process writes the per-channel edges of src into dst.
func (f *EdgeFilter) Process(ctx context.Context, src, dst *image.NRGBA) error {
	ctx, span, err := f.startProcess(ctx, src, dst)
	if err != nil {
		return err
	}
	defer span.End()

	size := src.Bounds().Size()
	// slots 0-2 hold the split channels, 3-5 their edge maps
	var planes [6]*image.Gray
	for i := range planes {
		if planes[i], err = f.grayBuffer(size, i); err != nil {
			return err
		}
	}
	if f.workspaces == nil {
		f.workspaces = NewBufferFactory(rimage.NewCannyWorkspace, (*rimage.CannyWorkspace).Close, f.logger)
	}
	var workspaces [3]*rimage.CannyWorkspace
	for i := range workspaces {
		if workspaces[i], err = f.workspaces.Buffer(size, i); err != nil {
			return err
		}
	}
	if err := rimage.Split(src, planes[0], planes[1], planes[2]); err != nil {
		return err
	}

	detect := func(channel int) utils.SimpleFunc {
		return func(ctx context.Context) error {
			return workspaces[channel].Canny(planes[channel], planes[channel+3], f.lowThreshold, f.highThreshold, f.apertureSize)
		}
	}
	if _, err := utils.RunInParallel(ctx, []utils.SimpleFunc{detect(0), detect(1), detect(2)}); err != nil {
		return err
	}
	return rimage.Merge(planes[3], planes[4], planes[5], dst)
}

// Duplicate returns an edge filter with the same thresholds and aperture.
func (f *EdgeFilter) Duplicate() Filter {
	return NewEdgeFilter(f.lowThreshold, f.highThreshold, f.apertureSize, f.logger)
}

// Close releases the Canny workspaces along with the scratch buffers.
func (f *EdgeFilter) Close() error {
	if f.closed {
		return nil
	}
	var err error
	if f.workspaces != nil {
		err = f.workspaces.Close()
	}
	return multierr.Combine(err, f.base.Close())
}
