package filter

import (
	"context"
	"image"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/rimage"
	"go.viam.com/imagefilter/utils"
)

// ColorMapFilterType is the registered type name of ColorMapFilter.
const ColorMapFilterType = "color_map"

func init() {
	RegisterFilter(ColorMapFilterType, func(attributes utils.AttributeMap, logger logging.Logger) (Filter, error) {
		conf, err := utils.TransformAttributeMap[*ColorMapConfig](attributes)
		if err != nil {
			return nil, err
		}
		cm, err := conf.parse()
		if err != nil {
			return nil, err
		}
		return NewColorMapFilter(cm, logger), nil
	})
}

// ColorMapConfig holds the attributes of a color map filter.
type ColorMapConfig struct {
	ColorMap string `json:"color_map"`
}

// Validate checks that the color map names a built-in table.
func (conf *ColorMapConfig) Validate() error {
	_, err := conf.parse()
	return err
}

func (conf *ColorMapConfig) parse() (rimage.ColorMapType, error) {
	if conf.ColorMap == "" {
		return 0, NewInvalidParameterError("color_map is required")
	}
	cm, err := rimage.ParseColorMapType(conf.ColorMap)
	if err != nil {
		return 0, NewInvalidParameterError(err.Error())
	}
	return cm, nil
}

// ColorMapFilter recolors an image through one of the built-in color map tables.
type ColorMapFilter struct {
	base
	colorMap rimage.ColorMapType
}

// NewColorMapFilter returns a filter applying cm. An unknown table is reported by
// Process.
func NewColorMapFilter(cm rimage.ColorMapType, logger logging.Logger) *ColorMapFilter {
	return &ColorMapFilter{base: newBase(ColorMapFilterType, true, logger), colorMap: cm}
}

// ColorMap returns the table the filter applies.
func (f *ColorMapFilter) ColorMap() rimage.ColorMapType {
	return f.colorMap
}

// Process writes src recolored through the filter's table into dst.
func (f *ColorMapFilter) Process(ctx context.Context, src, dst *image.NRGBA) error {
	_, span, err := f.startProcess(ctx, src, dst)
	if err != nil {
		return err
	}
	defer span.End()
	return rimage.ApplyColorMap(src, dst, f.colorMap)
}

// Duplicate returns a filter applying the same table.
func (f *ColorMapFilter) Duplicate() Filter {
	return NewColorMapFilter(f.colorMap, f.logger)
}
