package rimage

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/imagefilter/utils"
)

const (
	tan22_5 = 0.4142135623730950488016887242097
	tan67_5 = 2.4142135623730950488016887242097
)

// pixel states used during hysteresis.
const (
	cannyNone uint8 = iota
	cannyCandidate
	cannyEdge
)

// CannyWorkspace holds the scratch memory of Canny edge detection at one image size, so
// that detecting edges frame after frame does not allocate. A workspace is not safe
// for concurrent use and must be closed to release any native memory it holds.
type CannyWorkspace struct {
	size   image.Point
	closed bool

	// pure Go scratch, allocated on first use
	rowDeriv  []int32
	rowSmooth []int32
	grad      gradient
	mag       []int32
	state     []uint8
	stack     []int

	native cannyNative
}

// NewCannyWorkspace returns a workspace for images of the given size.
func NewCannyWorkspace(size image.Point) *CannyWorkspace {
	return &CannyWorkspace{size: size}
}

// Size returns the image size the workspace serves.
func (ws *CannyWorkspace) Size() image.Point {
	return ws.size
}

// Canny finds edges in src and writes them to dst as 255 (edge) or 0 (no edge).
//
// The gradient is the L1 norm of the Sobel derivatives for the given aperture (3, 5
// or 7). Thresholds are floored to integers; if low is greater than high they are
// swapped. Pixels above high seed edges, and pixels above low that are local maxima
// along the gradient direction join an edge when 8-connected to a seed.
func (ws *CannyWorkspace) Canny(src, dst *image.Gray, low, high float64, aperture int) error {
	if ws.closed {
		return errors.New("canny: workspace is closed")
	}
	size := src.Bounds().Size()
	if size != ws.size {
		return SizeMismatchError("canny", ws.size, size)
	}
	if dstSize := dst.Bounds().Size(); dstSize != size {
		return SizeMismatchError("canny", size, dstSize)
	}
	if _, _, err := sobelKernels(aperture); err != nil {
		return err
	}
	if size.X == 0 || size.Y == 0 {
		return nil
	}
	if low > high {
		low, high = high, low
	}
	return ws.canny(src, dst, low, high, aperture)
}

// Close releases the workspace. Closing twice is a no-op.
func (ws *CannyWorkspace) Close() error {
	if ws.closed {
		return nil
	}
	ws.closed = true
	ws.rowDeriv, ws.rowSmooth, ws.mag, ws.state, ws.stack = nil, nil, nil, nil, nil
	ws.grad = gradient{}
	return ws.native.close()
}

// Canny runs edge detection once with a throwaway workspace. See CannyWorkspace.Canny.
func Canny(src, dst *image.Gray, low, high float64, aperture int) error {
	ws := NewCannyWorkspace(src.Bounds().Size())
	err := ws.Canny(src, dst, low, high, aperture)
	return multierr.Combine(err, ws.Close())
}

func (ws *CannyWorkspace) allocGo() {
	n := ws.size.X * ws.size.Y
	if len(ws.mag) == n {
		return
	}
	ws.rowDeriv = make([]int32, n)
	ws.rowSmooth = make([]int32, n)
	ws.grad = gradient{Width: ws.size.X, Height: ws.size.Y, DX: make([]int32, n), DY: make([]int32, n)}
	ws.mag = make([]int32, n)
	ws.state = make([]uint8, n)
	ws.stack = make([]int, 0, ws.size.X)
}

// cannyGo is the pure Go detector. Thresholds must already be ordered.
func (ws *CannyWorkspace) cannyGo(src, dst *image.Gray, low, high float64, aperture int) error {
	ws.allocGo()
	grad := &ws.grad
	if err := sobelInto(src, aperture, grad, ws.rowDeriv, ws.rowSmooth); err != nil {
		return err
	}
	lowT, highT := int32(math.Floor(low)), int32(math.Floor(high))
	w, h := ws.size.X, ws.size.Y

	mag := ws.mag
	for i := range mag {
		mag[i] = abs32(grad.DX[i]) + abs32(grad.DY[i])
	}
	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// non-maximum suppression
	state := ws.state
	utils.ParallelForEachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			state[i] = cannyNone
			m := mag[i]
			if m <= lowT {
				continue
			}
			ax := math.Abs(float64(grad.DX[i]))
			ay := math.Abs(float64(grad.DY[i]))
			var isMax bool
			switch {
			case ay < ax*tan22_5:
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > ax*tan67_5:
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (grad.DX[i] < 0) != (grad.DY[i] < 0) {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !isMax {
				continue
			}
			if m > highT {
				state[i] = cannyEdge
			} else {
				state[i] = cannyCandidate
			}
		}
	})

	// hysteresis
	stack := ws.stack[:0]
	for i, s := range state {
		if s == cannyEdge {
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				n := ny*w + nx
				if state[n] == cannyCandidate {
					state[n] = cannyEdge
					stack = append(stack, n)
				}
			}
		}
	}
	ws.stack = stack

	db := dst.Bounds()
	utils.ParallelForEachRow(h, func(y int) {
		row := dst.Pix[dst.PixOffset(db.Min.X, db.Min.Y+y):]
		for x := 0; x < w; x++ {
			if state[y*w+x] == cannyEdge {
				row[x] = 255
			} else {
				row[x] = 0
			}
		}
	})
	return nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
