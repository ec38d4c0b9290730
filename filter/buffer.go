package filter

import (
	"fmt"
	"image"

	"go.uber.org/multierr"

	"go.viam.com/imagefilter/logging"
)

// BufferFactory hands out scratch buffers by slot index, allocating each one the first
// time it is asked for and reusing it afterwards.
//
// A factory tracks a single size. Asking for a buffer at any other size releases every
// buffer it holds before allocating at the new size, so callers that alternate sizes on
// one factory pay for a reallocation each time. Buffers stay owned by the factory: a
// returned buffer is only valid until the next size change or Close.
//
// A BufferFactory is not safe for concurrent use.
type BufferFactory[T any] struct {
	construct func(size image.Point) T
	release   func(T) error
	logger    logging.Logger

	size    image.Point
	buffers map[int]T
	closed  bool
}

// NewBufferFactory returns a factory that builds buffers with construct. release, if
// not nil, is called on every buffer the factory drops.
func NewBufferFactory[T any](
	construct func(size image.Point) T,
	release func(T) error,
	logger logging.Logger,
) *BufferFactory[T] {
	if logger == nil {
		logger = logging.Global()
	}
	return &BufferFactory[T]{
		construct: construct,
		release:   release,
		logger:    logger,
		buffers:   map[int]T{},
	}
}

// Buffer returns the buffer in slot index, sized to size.
func (bf *BufferFactory[T]) Buffer(size image.Point, index int) (T, error) {
	var zero T
	if bf.closed {
		return zero, ErrClosed
	}
	if index < 0 {
		return zero, NewInvalidParameterError(fmt.Sprintf("buffer slot index must not be negative, got %d", index))
	}
	if size != bf.size {
		if len(bf.buffers) != 0 {
			bf.logger.Debugw("scratch buffer size changed, dropping buffers",
				"from", bf.size, "to", size, "count", len(bf.buffers))
		}
		if err := bf.dropAll(); err != nil {
			return zero, err
		}
		bf.size = size
	}
	if buf, ok := bf.buffers[index]; ok {
		return buf, nil
	}
	buf := bf.construct(size)
	bf.buffers[index] = buf
	return buf, nil
}

// Len returns the number of buffers currently held.
func (bf *BufferFactory[T]) Len() int {
	return len(bf.buffers)
}

// Size returns the size the held buffers were allocated at.
func (bf *BufferFactory[T]) Size() image.Point {
	return bf.size
}

// Close releases every held buffer. The factory cannot be used afterwards. Closing more
// than once is a no-op.
func (bf *BufferFactory[T]) Close() error {
	if bf.closed {
		return nil
	}
	bf.closed = true
	err := bf.dropAll()
	bf.buffers = nil
	return err
}

func (bf *BufferFactory[T]) dropAll() error {
	var errs error
	for index, buf := range bf.buffers {
		if bf.release != nil {
			errs = multierr.Combine(errs, bf.release(buf))
		}
		delete(bf.buffers, index)
	}
	return errs
}
