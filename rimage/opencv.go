//go:build !no_cgo

package rimage

import (
	"image"
	"image/color"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"go.viam.com/imagefilter/utils"
)

// cannyNative holds the Mats handed to OpenCV.
type cannyNative struct {
	ok         bool
	src, edges gocv.Mat
}

func (n *cannyNative) close() error {
	if !n.ok {
		return nil
	}
	n.ok = false
	return multierr.Combine(n.src.Close(), n.edges.Close())
}

func (ws *CannyWorkspace) canny(src, dst *image.Gray, low, high float64, aperture int) error {
	// gocv only exposes Canny with the 3x3 Sobel aperture
	if aperture != 3 {
		return ws.cannyGo(src, dst, low, high, aperture)
	}
	n := &ws.native
	if !n.ok {
		n.src = gocv.NewMatWithSize(ws.size.Y, ws.size.X, gocv.MatTypeCV8U)
		n.edges = gocv.NewMatWithSize(ws.size.Y, ws.size.X, gocv.MatTypeCV8U)
		n.ok = true
	}
	if err := copyToMat(src.Pix, src.Stride, src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y), ws.size, 1, &n.src); err != nil {
		return err
	}
	gocv.Canny(n.src, &n.edges, float32(low), float32(high))
	return copyFromMat(&n.edges, dst.Pix, dst.Stride, dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y), ws.size, 1)
}

var gocvColorMaps = map[ColorMapType]gocv.ColormapTypes{
	ColorMapAutumn:  gocv.ColormapAutumn,
	ColorMapBone:    gocv.ColormapBone,
	ColorMapJet:     gocv.ColormapJet,
	ColorMapWinter:  gocv.ColormapWinter,
	ColorMapRainbow: gocv.ColormapRainbow,
	ColorMapOcean:   gocv.ColormapOcean,
	ColorMapSummer:  gocv.ColormapSummer,
	ColorMapSpring:  gocv.ColormapSpring,
	ColorMapCool:    gocv.ColormapCool,
	ColorMapHSV:     gocv.ColormapHsv,
	ColorMapPink:    gocv.ColormapPink,
	ColorMapHot:     gocv.ColormapHot,
}

func applyColorMap(src, dst *image.NRGBA, cm ColorMapType, lut *colorLUT) error {
	cvMap, ok := gocvColorMaps[cm]
	if !ok {
		applyLUT(src, dst, lut)
		return nil
	}
	size := src.Bounds().Size()
	gray := gocv.NewMatWithSize(size.Y, size.X, gocv.MatTypeCV8U)
	defer gray.Close()
	lumaData, err := gray.DataPtrUint8()
	if err != nil {
		return err
	}
	sb := src.Bounds()
	utils.ParallelForEachRow(size.Y, func(y int) {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		row := lumaData[y*size.X : (y+1)*size.X]
		for x := range row {
			row[x] = Luma(src.Pix[si], src.Pix[si+1], src.Pix[si+2])
			si += 4
		}
	})

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(gray, &colored, cvMap)
	bgr, err := colored.DataPtrUint8()
	if err != nil {
		return err
	}
	db := dst.Bounds()
	utils.ParallelForEachRow(size.Y, func(y int) {
		di := dst.PixOffset(db.Min.X, db.Min.Y+y)
		ci := y * size.X * 3
		for x := 0; x < size.X; x++ {
			dst.Pix[di] = bgr[ci+2]
			dst.Pix[di+1] = bgr[ci+1]
			dst.Pix[di+2] = bgr[ci]
			dst.Pix[di+3] = 0xff
			di += 4
			ci += 3
		}
	})
	return nil
}

// remapNative caches the float32 maps and the image Mats of a RemapTable.
type remapNative struct {
	ok         bool
	mapX, mapY gocv.Mat
	dst        gocv.Mat

	hasSrc  bool
	srcSize image.Point
	src     gocv.Mat
}

func (n *remapNative) close() error {
	var err error
	if n.ok {
		err = multierr.Combine(n.mapX.Close(), n.mapY.Close(), n.dst.Close())
		n.ok = false
	}
	if n.hasSrc {
		err = multierr.Combine(err, n.src.Close())
		n.hasSrc = false
	}
	return err
}

func (n *remapNative) prepare(table *RemapTable, srcSize image.Point) error {
	if !n.ok {
		size := table.Size()
		n.mapX = gocv.NewMatWithSize(size.Y, size.X, gocv.MatTypeCV32F)
		n.mapY = gocv.NewMatWithSize(size.Y, size.X, gocv.MatTypeCV32F)
		n.dst = gocv.NewMatWithSize(size.Y, size.X, gocv.MatTypeCV8UC4)
		n.ok = true
		for _, pair := range []struct {
			m   *gocv.Mat
			src interface{ At(i, j int) float64 }
		}{{&n.mapX, table.X}, {&n.mapY, table.Y}} {
			data, err := pair.m.DataPtrFloat32()
			if err != nil {
				return err
			}
			for y := 0; y < size.Y; y++ {
				for x := 0; x < size.X; x++ {
					data[y*size.X+x] = float32(pair.src.At(y, x))
				}
			}
		}
	}
	if !n.hasSrc || n.srcSize != srcSize {
		if n.hasSrc {
			if err := n.src.Close(); err != nil {
				return err
			}
		}
		n.src = gocv.NewMatWithSize(srcSize.Y, srcSize.X, gocv.MatTypeCV8UC4)
		n.srcSize = srcSize
		n.hasSrc = true
	}
	return nil
}

func remap(src, dst *image.NRGBA, table *RemapTable, opts RemapOptions) error {
	n := &table.native
	srcSize := src.Bounds().Size()
	if err := n.prepare(table, srcSize); err != nil {
		return err
	}
	size := table.Size()
	if err := copyToMat(src.Pix, src.Stride, src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y), srcSize, 4, &n.src); err != nil {
		return err
	}
	dstStart := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y)
	border := gocv.BorderConstant
	if !opts.FillOutliers {
		// pixels OpenCV skips keep the previous destination contents
		border = gocv.BorderTransparent
		if err := copyToMat(dst.Pix, dst.Stride, dstStart, size, 4, &n.dst); err != nil {
			return err
		}
	}
	interp := gocv.InterpolationLinear
	if opts.Interpolation == InterpolationNearest {
		interp = gocv.InterpolationNearestNeighbor
	}
	gocv.Remap(n.src, &n.dst, &n.mapX, &n.mapY, interp, border, borderScalar(opts.FillColor))
	return copyFromMat(&n.dst, dst.Pix, dst.Stride, dstStart, size, 4)
}

// borderScalar returns the border value for an RGBA ordered Mat. gocv hands the
// color to OpenCV in BGR order, so red and blue trade places.
func borderScalar(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.B, G: c.G, B: c.R, A: c.A}
}

// copyToMat copies rows of channels bytes per pixel from pix into the continuous Mat m.
func copyToMat(pix []uint8, stride, start int, size image.Point, channels int, m *gocv.Mat) error {
	data, err := m.DataPtrUint8()
	if err != nil {
		return err
	}
	rowLen := size.X * channels
	for y := 0; y < size.Y; y++ {
		copy(data[y*rowLen:(y+1)*rowLen], pix[start+y*stride:])
	}
	return nil
}

// copyFromMat is the inverse of copyToMat.
func copyFromMat(m *gocv.Mat, pix []uint8, stride, start int, size image.Point, channels int) error {
	data, err := m.DataPtrUint8()
	if err != nil {
		return err
	}
	rowLen := size.X * channels
	for y := 0; y < size.Y; y++ {
		copy(pix[start+y*stride:start+y*stride+rowLen], data[y*rowLen:(y+1)*rowLen])
	}
	return nil
}
