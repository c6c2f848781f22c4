package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForChunksCoversRangeOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		hits := make([]int32, n)
		ForChunks(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "n=%d index %d", n, i)
		}
	}
}

func TestForEach(t *testing.T) {
	out := make([]int, 50)
	ForEach(len(out), func(i int) { out[i] = i * i })
	assert.Equal(t, 49*49, out[49])
	assert.Equal(t, 0, out[0])
}

func TestForChunksRaisesWorkerPanicOnCaller(t *testing.T) {
	var done int32
	assert.PanicsWithValue(t, "bad row", func() {
		ForChunks(1000, func(start, end int) {
			defer atomic.AddInt32(&done, 1)
			if start == 0 {
				panic("bad row")
			}
		})
	})
	rows := (1000 + Workers() - 1) / Workers()
	assert.Equal(t, int32((1000+rows-1)/rows), atomic.LoadInt32(&done))
}

func TestGroupWaitsAndKeepsFirstPanic(t *testing.T) {
	var g Group
	var ran int32
	for i := 0; i < 8; i++ {
		g.Go(func() { atomic.AddInt32(&ran, 1) })
	}
	require.NotPanics(t, g.Wait)
	assert.Equal(t, int32(8), ran)

	var bad Group
	bad.Go(func() { panic(42) })
	assert.PanicsWithValue(t, 42, bad.Wait)
}
