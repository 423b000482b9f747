package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEncoder struct {
	vector []float32
}

func (e *staticEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

func (e *staticEncoder) Dimensions() int {
	return len(e.vector)
}

func TestLazy_ConstructsOnceAcrossConcurrentCalls(t *testing.T) {
	var constructed int32
	lazy := NewLazy(2, func() (Encoder, error) {
		atomic.AddInt32(&constructed, 1)
		return &staticEncoder{vector: []float32{1, 2}}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := lazy.Encode(context.Background(), "text")
			assert.NoError(t, err)
			assert.Equal(t, []float32{1, 2}, vec)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed))
}

func TestLazy_DimensionsDoesNotInitialize(t *testing.T) {
	constructed := false
	lazy := NewLazy(1536, func() (Encoder, error) {
		constructed = true
		return &staticEncoder{vector: make([]float32, 1536)}, nil
	})

	assert.Equal(t, 1536, lazy.Dimensions())
	assert.False(t, constructed)
}

func TestLazy_ConstructErrorSurfacesOnEveryCall(t *testing.T) {
	lazy := NewLazy(2, func() (Encoder, error) {
		return nil, errors.New("no API key")
	})

	_, err := lazy.Encode(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider initialization failed")

	// The failure is cached; later calls fail the same way without
	// reconstructing.
	_, err = lazy.Encode(context.Background(), "text")
	assert.Error(t, err)
}
