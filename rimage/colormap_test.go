package rimage

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/test"
)

func TestLuma(t *testing.T) {
	test.That(t, Luma(0, 0, 0), test.ShouldEqual, uint8(0))
	test.That(t, Luma(255, 255, 255), test.ShouldEqual, uint8(255))
	test.That(t, Luma(100, 100, 100), test.ShouldEqual, uint8(100))
	test.That(t, Luma(255, 0, 0), test.ShouldEqual, uint8(76))
}

func TestParseColorMapType(t *testing.T) {
	for _, name := range ColorMapNames() {
		cm, err := ParseColorMapType(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cm.String(), test.ShouldEqual, name)
		test.That(t, cm.Valid(), test.ShouldBeTrue)
	}
	cm, err := ParseColorMapType(" JET ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cm, test.ShouldEqual, ColorMapJet)

	_, err = ParseColorMapType("viridis")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "jet")

	test.That(t, ColorMapType(99).Valid(), test.ShouldBeFalse)
	test.That(t, ColorMapType(99).String(), test.ShouldEqual, "unknown")
}

func TestLookupTableEndpoints(t *testing.T) {
	for cm, stops := range colorMapStops {
		lut, err := lookupTable(cm)
		test.That(t, err, test.ShouldBeNil)
		first, last := stops[0].c, stops[len(stops)-1].c
		r, g, b := first.RGB255()
		test.That(t, lut[0], test.ShouldResemble, [3]uint8{r, g, b})
		r, g, b = last.RGB255()
		test.That(t, lut[255], test.ShouldResemble, [3]uint8{r, g, b})
	}

	gray, err := lookupTable(ColorMapGray)
	test.That(t, err, test.ShouldBeNil)
	for i := range gray {
		test.That(t, gray[i], test.ShouldResemble, [3]uint8{uint8(i), uint8(i), uint8(i)})
	}

	hsv, err := lookupTable(ColorMapHSV)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hsv[0], test.ShouldResemble, [3]uint8{255, 0, 0})
	test.That(t, hsv[255], test.ShouldResemble, [3]uint8{255, 0, 0})

	_, err = lookupTable(ColorMapType(-1))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestApplyColorMap(t *testing.T) {
	src := imaging.New(8, 8, color.NRGBA{255, 255, 255, 255})
	dst := NewColorImage(image.Pt(8, 8))
	test.That(t, ApplyColorMap(src, dst, ColorMapSpring), test.ShouldBeNil)
	// white maps to the top of spring, yellow
	test.That(t, dst.NRGBAAt(3, 3), test.ShouldResemble, color.NRGBA{255, 255, 0, 255})

	black := imaging.New(8, 8, color.NRGBA{0, 0, 0, 255})
	test.That(t, ApplyColorMap(black, dst, ColorMapAutumn), test.ShouldBeNil)
	test.That(t, dst.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{255, 0, 0, 255})

	err := ApplyColorMap(src, NewColorImage(image.Pt(4, 8)), ColorMapJet)
	test.That(t, err, test.ShouldNotBeNil)
	err = ApplyColorMap(src, dst, ColorMapType(42))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestApplyColorMapInPlace(t *testing.T) {
	src := gradientImage(image.Pt(12, 9))
	expected := NewColorImage(image.Pt(12, 9))
	test.That(t, ApplyColorMap(src, expected, ColorMapBone), test.ShouldBeNil)
	test.That(t, ApplyColorMap(src, src, ColorMapBone), test.ShouldBeNil)
	test.That(t, Equal(src, expected), test.ShouldBeTrue)
}

func TestPinkColorMap(t *testing.T) {
	pink, err := lookupTable(ColorMapPink)
	test.That(t, err, test.ShouldBeNil)
	hot, err := lookupTable(ColorMapHot)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, pink[0], test.ShouldResemble, [3]uint8{0, 0, 0})
	test.That(t, pink[255], test.ShouldResemble, [3]uint8{255, 255, 255})
	for _, i := range []int{32, 96, 128, 200} {
		gray := float64(i) / 255
		for ch := 0; ch < 3; ch++ {
			want := math.Sqrt((2*gray+float64(hot[i][ch])/255)/3) * 255
			test.That(t, float64(pink[i][ch]), test.ShouldAlmostEqual, want, 1.5)
		}
	}
	// red leads in the darker half, giving the sepia cast
	test.That(t, pink[64][0], test.ShouldBeGreaterThan, pink[64][2])

	src := imaging.New(4, 4, color.NRGBA{255, 255, 255, 255})
	dst := NewColorImage(image.Pt(4, 4))
	test.That(t, ApplyColorMap(src, dst, ColorMapPink), test.ShouldBeNil)
	test.That(t, dst.NRGBAAt(1, 1), test.ShouldResemble, color.NRGBA{255, 255, 255, 255})
}

func TestApplyLUTMatchesTable(t *testing.T) {
	src := gradientImage(image.Pt(12, 9))
	dst := NewColorImage(image.Pt(12, 9))
	lut, err := lookupTable(ColorMapJet)
	test.That(t, err, test.ShouldBeNil)
	applyLUT(src, dst, lut)
	for y := 0; y < 9; y++ {
		for x := 0; x < 12; x++ {
			in := src.NRGBAAt(x, y)
			entry := lut[Luma(in.R, in.G, in.B)]
			test.That(t, dst.NRGBAAt(x, y), test.ShouldResemble, color.NRGBA{entry[0], entry[1], entry[2], 255})
		}
	}
}
