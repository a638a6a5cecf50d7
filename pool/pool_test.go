package pool

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytscope/metadata"
)

func TestRunDeliversResult(t *testing.T) {
	p := New(2)
	defer p.Close()

	result := p.Run(context.Background(), func(context.Context) *metadata.ScrapeResult {
		return metadata.Failed("yt-dlp", "boom", time.Millisecond)
	})

	require.NotNil(t, result)
	assert.Equal(t, "yt-dlp", result.Method)
	assert.Equal(t, "boom", result.Error)
}

func TestRunAllPreservesOrder(t *testing.T) {
	p := New(3)
	defer p.Close()

	jobs := make([]Job, 5)
	for i := range jobs {
		method := fmt.Sprintf("method-%d", i)
		jobs[i] = func(context.Context) *metadata.ScrapeResult {
			return metadata.Failed(method, "x", 0)
		}
	}

	results := p.RunAll(context.Background(), jobs)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("method-%d", i), r.Method)
	}
}

func TestConcurrencyBound(t *testing.T) {
	const workers = 3
	p := New(workers)
	defer p.Close()

	var current, peak atomic.Int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) *metadata.ScrapeResult {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return metadata.Succeeded("m", metadata.New("abc12345678", "m"), time.Millisecond, 1)
		}
	}

	p.RunAll(context.Background(), jobs)
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Positive(t, peak.Load())
}

func TestCanceledContextShortCircuits(t *testing.T) {
	p := New(1)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	result := p.Run(ctx, func(context.Context) *metadata.ScrapeResult {
		ran = true
		return nil
	})

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.False(t, ran, "canceled jobs never execute")
	assert.Contains(t, result.Error, "context canceled")
}

func TestCloseIsIdempotent(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()
}
