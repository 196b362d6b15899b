package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachVisitsAll(t *testing.T) {
	var seen [50]atomic.Int32
	ForEach(len(seen), 4, func(i int) {
		seen[i].Add(1)
	})
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "index %d", i)
	}
	ForEach(0, 4, func(int) { t.Fatal("called on empty range") })
}

func TestLoopUntilStops(t *testing.T) {
	var calls atomic.Int32
	Loop(4).LoopUntil(func(i uint32, ender LoopStopper) bool {
		calls.Add(1)
		return i >= 100
	})
	assert.GreaterOrEqual(t, calls.Load(), int32(101))
	assert.Less(t, calls.Load(), int32(200))
}
