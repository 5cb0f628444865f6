package imaging

import (
	"errors"
	"fmt"
)

// ErrInvalidBuffer is matched (via errors.Is) by every *InvalidBufferError.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// ErrResourceExhausted reports a buffer too large to allocate or process.
var ErrResourceExhausted = errors.New("resource exhausted: image too large")

// InvalidBufferError describes a buffer whose byte length does not match
// its dimensions.
type InvalidBufferError struct {
	Width  int
	Height int
	Len    int
}

func (e *InvalidBufferError) Error() string {
	return fmt.Sprintf("invalid pixel buffer: %dx%d needs %d bytes, have %d",
		e.Width, e.Height, e.Width*e.Height*4, e.Len)
}

// Is lets errors.Is(err, ErrInvalidBuffer) match.
func (e *InvalidBufferError) Is(target error) bool {
	return target == ErrInvalidBuffer
}
