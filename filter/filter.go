// Package filter implements reusable image filters that keep their scratch memory
// between calls.
//
// Every filter reads a color image and writes a color image of the same size. A filter
// allocates its intermediate buffers the first time it sees a given image size and
// reuses them on later calls; a call at a new size drops the old buffers first. Filters
// are not safe for concurrent use. Use Duplicate to get an independent copy for another
// goroutine.
package filter

import (
	"context"
	"image"

	"go.opencensus.io/trace"
	"go.uber.org/multierr"

	"go.viam.com/imagefilter/logging"
	"go.viam.com/imagefilter/rimage"
)

// A Filter transforms one color image into another of the same size.
type Filter interface {
	// Name returns the registered type name of the filter.
	Name() string

	// Process reads src and writes the result into dst. Both must have the same size.
	// When InPlace is true, src and dst may be the same image.
	Process(ctx context.Context, src, dst *image.NRGBA) error

	// Duplicate returns a new filter with the same parameters and none of the
	// receiver's buffers.
	Duplicate() Filter

	// InPlace reports whether Process tolerates src and dst being the same image.
	InPlace() bool

	// Close releases the filter's buffers. Closing twice is a no-op; any other use
	// after Close returns ErrClosed.
	Close() error
}

// Apply runs f on img and returns the result in a newly allocated image. img is
// converted to the filter's color layout first when it is not already in it.
func Apply(ctx context.Context, f Filter, img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, NewInvalidParameterError(f.Name() + ": nil image")
	}
	src := rimage.ConvertToColorImage(img)
	dst := rimage.NewColorImage(src.Bounds().Size())
	if err := f.Process(ctx, src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// base carries what every filter shares: its scratch buffer factories, logger and
// closed state.
type base struct {
	name    string
	inPlace bool
	logger  logging.Logger

	colorBuffers *BufferFactory[*image.NRGBA]
	grayBuffers  *BufferFactory[*image.Gray]
	closed       bool
}

func newBase(name string, inPlace bool, logger logging.Logger) base {
	if logger == nil {
		logger = logging.Global()
	}
	return base{name: name, inPlace: inPlace, logger: logger}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) InPlace() bool {
	return b.inPlace
}

// startProcess checks that the filter is usable on src and dst and opens a trace span
// for the call.
func (b *base) startProcess(ctx context.Context, src, dst *image.NRGBA) (context.Context, *trace.Span, error) {
	if b.closed {
		return ctx, nil, ErrClosed
	}
	if src == nil || dst == nil {
		return ctx, nil, NewInvalidParameterError(b.name + ": nil image")
	}
	srcSize, dstSize := src.Bounds().Size(), dst.Bounds().Size()
	if srcSize != dstSize {
		return ctx, nil, rimage.SizeMismatchError(b.name, srcSize, dstSize)
	}
	ctx, span := trace.StartSpan(ctx, "filter::"+b.name+"::Process")
	return ctx, span, nil
}

// colorBuffer returns color scratch buffer index at size, creating the factory on
// first use.
func (b *base) colorBuffer(size image.Point, index int) (*image.NRGBA, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if b.colorBuffers == nil {
		b.colorBuffers = NewBufferFactory(rimage.NewColorImage, nil, b.logger)
	}
	return b.colorBuffers.Buffer(size, index)
}

// grayBuffer returns single channel scratch buffer index at size, creating the
// factory on first use.
func (b *base) grayBuffer(size image.Point, index int) (*image.Gray, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if b.grayBuffers == nil {
		b.grayBuffers = NewBufferFactory(rimage.NewGrayImage, nil, b.logger)
	}
	return b.grayBuffers.Buffer(size, index)
}

func (b *base) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	var err error
	if b.colorBuffers != nil {
		err = multierr.Combine(err, b.colorBuffers.Close())
	}
	if b.grayBuffers != nil {
		err = multierr.Combine(err, b.grayBuffers.Close())
	}
	return err
}
