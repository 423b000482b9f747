package embedding

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers construction of an Encoder until the first Encode call and
// caches it for the process lifetime. Requests that fail validation
// upstream never pay the provider's cold-start cost. The sync.Once guard
// makes concurrent first callers block until the one initialization
// finishes instead of double-initializing.
type Lazy struct {
	construct  func() (Encoder, error)
	dimensions int

	once sync.Once
	enc  Encoder
	err  error
}

// NewLazy wraps an encoder constructor. dimensions must match what the
// constructed encoder will report, so callers can size indexes before
// the first encode.
func NewLazy(dimensions int, construct func() (Encoder, error)) *Lazy {
	return &Lazy{construct: construct, dimensions: dimensions}
}

// Encode initializes the underlying encoder on first use and delegates.
func (l *Lazy) Encode(ctx context.Context, text string) ([]float32, error) {
	l.once.Do(func() {
		l.enc, l.err = l.construct()
	})
	if l.err != nil {
		return nil, fmt.Errorf("embedding provider initialization failed: %w", l.err)
	}
	return l.enc.Encode(ctx, text)
}

// Dimensions returns the vector dimension without forcing initialization.
func (l *Lazy) Dimensions() int {
	return l.dimensions
}
