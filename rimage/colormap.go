package rimage

import (
	"image"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"go.viam.com/imagefilter/utils"
)

// ColorMapType selects one of the built-in color map tables.
type ColorMapType int

// The built-in color maps.
const (
	ColorMapAutumn ColorMapType = iota
	ColorMapBone
	ColorMapJet
	ColorMapWinter
	ColorMapRainbow
	ColorMapOcean
	ColorMapSummer
	ColorMapSpring
	ColorMapCool
	ColorMapHSV
	ColorMapPink
	ColorMapHot
	ColorMapGray
	numColorMaps
)

var colorMapNames = map[ColorMapType]string{
	ColorMapAutumn:  "autumn",
	ColorMapBone:    "bone",
	ColorMapJet:     "jet",
	ColorMapWinter:  "winter",
	ColorMapRainbow: "rainbow",
	ColorMapOcean:   "ocean",
	ColorMapSummer:  "summer",
	ColorMapSpring:  "spring",
	ColorMapCool:    "cool",
	ColorMapHSV:     "hsv",
	ColorMapPink:    "pink",
	ColorMapHot:     "hot",
	ColorMapGray:    "gray",
}

func (cm ColorMapType) String() string {
	if name, ok := colorMapNames[cm]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether cm names a built-in table.
func (cm ColorMapType) Valid() bool {
	return cm >= 0 && cm < numColorMaps
}

// ColorMapNames returns the names of all built-in color maps, sorted.
func ColorMapNames() []string {
	names := make([]string, 0, len(colorMapNames))
	for _, name := range colorMapNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseColorMapType looks a color map up by name, ignoring case.
func ParseColorMapType(name string) (ColorMapType, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for cm, n := range colorMapNames {
		if n == lower {
			return cm, nil
		}
	}
	return 0, errors.Errorf("unknown color map %q, expected one of %v", name, ColorMapNames())
}

// colorStop anchors a color at a position in [0, 1]; tables interpolate linearly in
// RGB between consecutive stops.
type colorStop struct {
	pos float64
	c   colorful.Color
}

var colorMapStops = map[ColorMapType][]colorStop{
	ColorMapAutumn: {{0, colorful.Color{R: 1, G: 0, B: 0}}, {1, colorful.Color{R: 1, G: 1, B: 0}}},
	ColorMapBone: {
		{0, colorful.Color{R: 0, G: 0, B: 0}},
		{0.365079, colorful.Color{R: 0.319444, G: 0.319444, B: 0.444444}},
		{0.746032, colorful.Color{R: 0.652778, G: 0.777778, B: 0.777778}},
		{1, colorful.Color{R: 1, G: 1, B: 1}},
	},
	ColorMapJet: {
		{0, colorful.Color{R: 0, G: 0, B: 0.5}},
		{0.125, colorful.Color{R: 0, G: 0, B: 1}},
		{0.375, colorful.Color{R: 0, G: 1, B: 1}},
		{0.625, colorful.Color{R: 1, G: 1, B: 0}},
		{0.875, colorful.Color{R: 1, G: 0, B: 0}},
		{1, colorful.Color{R: 0.5, G: 0, B: 0}},
	},
	ColorMapWinter: {{0, colorful.Color{R: 0, G: 0, B: 1}}, {1, colorful.Color{R: 0, G: 1, B: 0.5}}},
	ColorMapRainbow: {
		{0, colorful.Color{R: 1, G: 0, B: 0}},
		{0.2, colorful.Color{R: 1, G: 1, B: 0}},
		{0.4, colorful.Color{R: 0, G: 1, B: 0}},
		{0.6, colorful.Color{R: 0, G: 1, B: 1}},
		{0.8, colorful.Color{R: 0, G: 0, B: 1}},
		{1, colorful.Color{R: 0.5, G: 0, B: 1}},
	},
	ColorMapOcean: {
		{0, colorful.Color{R: 0, G: 0.5, B: 0}},
		{1.0 / 3, colorful.Color{R: 0, G: 0, B: 1.0 / 3}},
		{2.0 / 3, colorful.Color{R: 0, G: 0.5, B: 2.0 / 3}},
		{1, colorful.Color{R: 1, G: 1, B: 1}},
	},
	ColorMapSummer: {{0, colorful.Color{R: 0, G: 0.5, B: 0.4}}, {1, colorful.Color{R: 1, G: 1, B: 0.4}}},
	ColorMapSpring: {{0, colorful.Color{R: 1, G: 0, B: 1}}, {1, colorful.Color{R: 1, G: 1, B: 0}}},
	ColorMapCool:   {{0, colorful.Color{R: 0, G: 1, B: 1}}, {1, colorful.Color{R: 1, G: 0, B: 1}}},
	ColorMapHot: {
		{0, colorful.Color{R: 0, G: 0, B: 0}},
		{0.375, colorful.Color{R: 1, G: 0, B: 0}},
		{0.75, colorful.Color{R: 1, G: 1, B: 0}},
		{1, colorful.Color{R: 1, G: 1, B: 1}},
	},
	ColorMapGray: {{0, colorful.Color{R: 0, G: 0, B: 0}}, {1, colorful.Color{R: 1, G: 1, B: 1}}},
}

type colorLUT [256][3]uint8

var (
	lutMu    sync.Mutex
	lutCache = map[ColorMapType]*colorLUT{}
)

// lookupTable returns the 256 entry table for cm, building it on first use.
func lookupTable(cm ColorMapType) (*colorLUT, error) {
	if !cm.Valid() {
		return nil, errors.Errorf("unknown color map %d", int(cm))
	}
	lutMu.Lock()
	defer lutMu.Unlock()
	if lut, ok := lutCache[cm]; ok {
		return lut, nil
	}
	lut := &colorLUT{}
	for i := range lut {
		t := float64(i) / 255
		var c colorful.Color
		switch cm {
		case ColorMapHSV:
			// full saturation and value, hue walking once around the circle
			c = colorful.Hsv(math.Mod(t*360, 360), 1, 1)
		case ColorMapPink:
			// sepia tones: sqrt((2*gray + hot) / 3) per channel
			hot := interpolateStops(colorMapStops[ColorMapHot], t)
			c = colorful.Color{
				R: math.Sqrt((2*t + hot.R) / 3),
				G: math.Sqrt((2*t + hot.G) / 3),
				B: math.Sqrt((2*t + hot.B) / 3),
			}
		default:
			c = interpolateStops(colorMapStops[cm], t)
		}
		lut[i][0], lut[i][1], lut[i][2] = c.Clamped().RGB255()
	}
	lutCache[cm] = lut
	return lut, nil
}

func interpolateStops(stops []colorStop, t float64) colorful.Color {
	if t <= stops[0].pos {
		return stops[0].c
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].pos {
			prev, next := stops[i-1], stops[i]
			return prev.c.BlendRgb(next.c, (t-prev.pos)/(next.pos-prev.pos))
		}
	}
	return stops[len(stops)-1].c
}

// Luma returns the 8 bit luma of an RGB triple using the Rec. 601 weights in 14 bit
// fixed point.
func Luma(r, g, b uint8) uint8 {
	const (
		wr    = 4899
		wg    = 9617
		wb    = 1868
		shift = 14
	)
	return uint8((uint32(r)*wr + uint32(g)*wg + uint32(b)*wb + (1 << (shift - 1))) >> shift)
}

// ApplyColorMap replaces every pixel of src by the color map entry for its luma and
// writes the result to dst. src and dst may be the same image.
func ApplyColorMap(src, dst *image.NRGBA, cm ColorMapType) error {
	lut, err := lookupTable(cm)
	if err != nil {
		return err
	}
	size := src.Bounds().Size()
	if dstSize := dst.Bounds().Size(); dstSize != size {
		return SizeMismatchError("apply color map", size, dstSize)
	}
	if size.X == 0 || size.Y == 0 {
		return nil
	}
	return applyColorMap(src, dst, cm, lut)
}

// applyLUT is the pure Go color map kernel.
func applyLUT(src, dst *image.NRGBA, lut *colorLUT) {
	size := src.Bounds().Size()
	sb, db := src.Bounds(), dst.Bounds()
	utils.ParallelForEachRow(size.Y, func(y int) {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		di := dst.PixOffset(db.Min.X, db.Min.Y+y)
		for x := 0; x < size.X; x++ {
			entry := lut[Luma(src.Pix[si], src.Pix[si+1], src.Pix[si+2])]
			dst.Pix[di] = entry[0]
			dst.Pix[di+1] = entry[1]
			dst.Pix[di+2] = entry[2]
			dst.Pix[di+3] = 0xff
			si += 4
			di += 4
		}
	})
}
