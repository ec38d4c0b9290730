//go:build no_cgo

package rimage

import "image"

type cannyNative struct{}

func (n *cannyNative) close() error {
	return nil
}

func (ws *CannyWorkspace) canny(src, dst *image.Gray, low, high float64, aperture int) error {
	return ws.cannyGo(src, dst, low, high, aperture)
}

func applyColorMap(src, dst *image.NRGBA, cm ColorMapType, lut *colorLUT) error {
	applyLUT(src, dst, lut)
	return nil
}

type remapNative struct{}

func (n *remapNative) close() error {
	return nil
}

func remap(src, dst *image.NRGBA, table *RemapTable, opts RemapOptions) error {
	remapGo(src, dst, table, opts)
	return nil
}
