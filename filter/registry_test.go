package filter

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/rimage"
	"go.viam.com/imagefilter/utils"
)

func TestRegisteredFilterTypes(t *testing.T) {
	test.That(t, RegisteredFilterTypes(), test.ShouldResemble,
		[]string{ColorMapFilterType, DistortionFilterType, EdgeFilterType, SolidFillFilterType})
}

func TestRegisterFilterTwicePanics(t *testing.T) {
	noop := func(utils.AttributeMap, logging.Logger) (Filter, error) { return nil, nil }
	test.That(t, func() { RegisterFilter(EdgeFilterType, noop) }, test.ShouldPanic)
	test.That(t, func() { RegisterFilter("nothing", nil) }, test.ShouldPanic)
}

func TestNewFromConfig(t *testing.T) {
	logger := logging.NewTestLogger(t)

	t.Run("edge", func(t *testing.T) {
		f, err := New(Config{
			Type:       EdgeFilterType,
			Attributes: utils.AttributeMap{"low_threshold": 20, "high_threshold": 80.5},
		}, logger)
		test.That(t, err, test.ShouldBeNil)
		defer f.Close()
		edge, ok := f.(*EdgeFilter)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, edge.lowThreshold, test.ShouldEqual, 20.)
		test.That(t, edge.highThreshold, test.ShouldEqual, 80.5)
		test.That(t, edge.apertureSize, test.ShouldEqual, DefaultApertureSize)
	})

	t.Run("edge with aperture", func(t *testing.T) {
		f, err := New(Config{
			Type:       EdgeFilterType,
			Attributes: utils.AttributeMap{"low_threshold": 20, "high_threshold": 80, "aperture_size": 5},
		}, logger)
		test.That(t, err, test.ShouldBeNil)
		defer f.Close()
		test.That(t, f.(*EdgeFilter).apertureSize, test.ShouldEqual, 5)
	})

	t.Run("color map", func(t *testing.T) {
		f, err := New(Config{Type: ColorMapFilterType, Attributes: utils.AttributeMap{"color_map": "Jet"}}, logger)
		test.That(t, err, test.ShouldBeNil)
		defer f.Close()
		test.That(t, f.(*ColorMapFilter).ColorMap(), test.ShouldEqual, rimage.ColorMapJet)
	})

	t.Run("solid fill", func(t *testing.T) {
		f, err := New(Config{Type: SolidFillFilterType, Attributes: utils.AttributeMap{"color": []interface{}{255, 0, 0}}}, logger)
		test.That(t, err, test.ShouldBeNil)
		defer f.Close()
		test.That(t, f.(*SolidFillFilter).Color(), test.ShouldResemble, color.NRGBA{R: 255, A: 255})

		size := image.Pt(32, 32)
		dst := rimage.NewColorImage(size)
		test.That(t, f.Process(context.Background(), rimage.NewColorImage(size), dst), test.ShouldBeNil)
		test.That(t, dst.NRGBAAt(31, 31), test.ShouldResemble, color.NRGBA{R: 255, A: 255})
	})

	t.Run("distortion", func(t *testing.T) {
		f, err := New(Config{
			Type:       DistortionFilterType,
			Attributes: utils.AttributeMap{"center_width": 0.25, "distortion_coefficient": -1},
		}, logger)
		test.That(t, err, test.ShouldBeNil)
		defer f.Close()
		d := f.(*DistortionFilter)
		test.That(t, d.centerWidth, test.ShouldEqual, 0.25)
		test.That(t, d.centerHeight, test.ShouldEqual, 0.5)
		test.That(t, d.coefficient, test.ShouldEqual, -1.)
	})
}

func TestNewFromConfigErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := New(Config{Type: "blur"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown filter type "blur"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, EdgeFilterType)

	for _, tc := range []struct {
		name    string
		conf    Config
		invalid bool
		msg     string
	}{
		{
			name:    "distortion center out of range",
			conf:    Config{Type: DistortionFilterType, Attributes: utils.AttributeMap{"center_width": 1.5}},
			invalid: true,
			msg:     "center_width",
		},
		{
			name:    "edge aperture",
			conf:    Config{Type: EdgeFilterType, Attributes: utils.AttributeMap{"aperture_size": 4}},
			invalid: true,
			msg:     "aperture_size",
		},
		{
			name:    "unknown color map",
			conf:    Config{Type: ColorMapFilterType, Attributes: utils.AttributeMap{"color_map": "plaid"}},
			invalid: true,
			msg:     "plaid",
		},
		{
			name:    "missing color map",
			conf:    Config{Type: ColorMapFilterType},
			invalid: true,
			msg:     "color_map is required",
		},
		{
			name:    "short color",
			conf:    Config{Type: SolidFillFilterType, Attributes: utils.AttributeMap{"color": []int{1, 2}}},
			invalid: true,
			msg:     "3 channels",
		},
		{
			name:    "color out of range",
			conf:    Config{Type: SolidFillFilterType, Attributes: utils.AttributeMap{"color": []int{1, 2, 300}}},
			invalid: true,
			msg:     "300",
		},
		{
			name: "unknown attribute",
			conf: Config{Type: EdgeFilterType, Attributes: utils.AttributeMap{"low": 1}},
			msg:  "unknown attributes [low]",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := New(tc.conf, logger)
			test.That(t, f, test.ShouldBeNil)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
			test.That(t, errors.Is(err, ErrInvalidParameter), test.ShouldEqual, tc.invalid)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	test.That(t, (&EdgeConfig{ApertureSize: 7}).Validate(), test.ShouldBeNil)
	test.That(t, (&ColorMapConfig{ColorMap: "hsv"}).Validate(), test.ShouldBeNil)
	test.That(t, (&SolidFillConfig{Color: []int{0, 128, 255}}).Validate(), test.ShouldBeNil)
	test.That(t, (&DistortionConfig{CenterWidth: 1, CenterHeight: 0}).Validate(), test.ShouldBeNil)
	test.That(t, errors.Is((&DistortionConfig{CenterWidth: 2}).Validate(), ErrInvalidParameter), test.ShouldBeTrue)
}
