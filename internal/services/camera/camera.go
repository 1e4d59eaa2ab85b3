// Package camera defines the frame source contracts the pipeline consumes.
package camera

import (
	"errors"

	"roadwatch/internal/services/annotate"
)

var (
	// ErrSourceUnavailable means the requested device could not be opened or
	// did not produce a frame.
	ErrSourceUnavailable = errors.New("video source unavailable")
	// ErrEndOfStream means the source has no more frames. It ends a run
	// gracefully.
	ErrEndOfStream = errors.New("end of stream")
)

// Frame is a captured image. It belongs to the loop iteration that read it
// and must be closed by that iteration.
type Frame interface {
	annotate.Canvas

	Width() int
	Height() int
	// Clone returns an independent copy the caller owns.
	Clone() Frame
	// Encode returns the frame as a JPEG.
	Encode() ([]byte, error)
	Close() error
}

// Source yields frames until it is exhausted or closed.
type Source interface {
	// Next returns the next frame or ErrEndOfStream.
	Next() (Frame, error)
	Close() error
}

// Opener opens sources by device index.
type Opener interface {
	Open(index int) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(index int) (Source, error)

func (f OpenerFunc) Open(index int) (Source, error) {
	return f(index)
}
