package transform

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestNewBrownConrady(t *testing.T) {
	bc, err := NewBrownConrady([]float64{0.1, 0.2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.Parameters(), test.ShouldResemble, []float64{0.1, 0.2, 0, 0, 0})
	test.That(t, bc.ModelType(), test.ShouldEqual, BrownConradyDistortionType)

	bc, err = NewBrownConrady(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.Parameters(), test.ShouldResemble, []float64{0, 0, 0, 0, 0})

	_, err = NewBrownConrady([]float64{1, 2, 3, 4, 5, 6})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewBrownConrady([]float64{math.NaN()})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid distortion_parameters")

	var nilBC *BrownConrady
	test.That(t, nilBC.CheckValid(), test.ShouldNotBeNil)
	test.That(t, nilBC.Parameters(), test.ShouldResemble, []float64{})
	x, y := nilBC.Transform(0.3, 0.4)
	test.That(t, x, test.ShouldEqual, 0.3)
	test.That(t, y, test.ShouldEqual, 0.4)
}

func TestBrownConradyTransform(t *testing.T) {
	zero := &BrownConrady{}
	x, y := zero.Transform(0.25, -0.5)
	test.That(t, x, test.ShouldEqual, 0.25)
	test.That(t, y, test.ShouldEqual, -0.5)

	radial := &BrownConrady{RadialK1: 0.5}
	// r² = 0.25, scale = 1.125
	x, y = radial.Transform(0.3, 0.4)
	test.That(t, x, test.ShouldAlmostEqual, 0.3375)
	test.That(t, y, test.ShouldAlmostEqual, 0.45)

	// the optical center never moves under radial distortion
	x, y = radial.Transform(0, 0)
	test.That(t, x, test.ShouldEqual, 0.0)
	test.That(t, y, test.ShouldEqual, 0.0)

	tangential := &BrownConrady{TangentialP1: 0.1}
	x, y = tangential.Transform(1, 0)
	test.That(t, x, test.ShouldAlmostEqual, 1.0)
	test.That(t, y, test.ShouldAlmostEqual, 0.1)
}

func TestNewDistorter(t *testing.T) {
	d, err := NewDistorter(BrownConradyDistortionType, []float64{0.01})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.ModelType(), test.ShouldEqual, BrownConradyDistortionType)

	_, err = NewDistorter(DistortionType("kannala_brandt"), nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "kannala_brandt")
}
