package filter

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/rimage"
	"go.viam.com/imagefilter/utils"
)

// SolidFillFilterType is the registered type name of SolidFillFilter.
const SolidFillFilterType = "solid_fill"

func init() {
	RegisterFilter(SolidFillFilterType, func(attributes utils.AttributeMap, logger logging.Logger) (Filter, error) {
		conf, err := utils.TransformAttributeMap[*SolidFillConfig](attributes)
		if err != nil {
			return nil, err
		}
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		return NewSolidFillFilterRGB(uint8(conf.Color[0]), uint8(conf.Color[1]), uint8(conf.Color[2]), logger), nil
	})
}

// SolidFillConfig holds the attributes of a solid fill filter. Color is [r, g, b].
type SolidFillConfig struct {
	Color []int `json:"color"`
}

// Validate checks that the color has three channels in [0, 255].
func (conf *SolidFillConfig) Validate() error {
	if len(conf.Color) != 3 {
		return NewInvalidParameterError(fmt.Sprintf("color must have 3 channels, got %d", len(conf.Color)))
	}
	for _, v := range conf.Color {
		if v < 0 || v > 255 {
			return NewInvalidParameterError(fmt.Sprintf("color channel %d is out of range [0, 255]", v))
		}
	}
	return nil
}

// SolidFillFilter ignores its input and paints the whole output one color.
type SolidFillFilter struct {
	base
	color color.NRGBA
}

// NewSolidFillFilter returns a filter painting c.
func NewSolidFillFilter(c color.NRGBA, logger logging.Logger) *SolidFillFilter {
	return &SolidFillFilter{base: newBase(SolidFillFilterType, false, logger), color: c}
}

// NewSolidFillFilterRGB returns a filter painting the opaque color (r, g, b).
func NewSolidFillFilterRGB(r, g, b uint8, logger logging.Logger) *SolidFillFilter {
	return NewSolidFillFilter(color.NRGBA{R: r, G: g, B: b, A: 0xff}, logger)
}

// Color returns the fill color.
func (f *SolidFillFilter) Color() color.NRGBA {
	return f.color
}

// Process fills dst. src only determines the expected size.
func (f *SolidFillFilter) Process(ctx context.Context, src, dst *image.NRGBA) error {
	_, span, err := f.startProcess(ctx, src, dst)
	if err != nil {
		return err
	}
	defer span.End()
	rimage.Fill(dst, f.color)
	return nil
}

// Duplicate returns a filter painting the same color.
func (f *SolidFillFilter) Duplicate() Filter {
	return NewSolidFillFilter(f.color, f.logger)
}
