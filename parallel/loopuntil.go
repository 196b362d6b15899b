// Package parallel contains parallel LoopUntil() and parallel ForEach() plus the evaluation state Hasher.
package parallel

import "math"
import "sync"
import "sync/atomic"

// LoopStopper is an interface to check if the loop should stop.
type LoopStopper interface {

	// Load reports true if the loop should stop.
	Load() bool
}

// Loop represents the number of goroutines to run.
type Loop int

// LoopUntil starts 'l' goroutines that iterate until one of them stops the loop.
// Each goroutine processes a unique integer i starting from 0.
// The loop stops if i reaches math.MaxUint32 or any goroutine's yield returns true.
func (l Loop) LoopUntil(yield func(i uint32, ender LoopStopper) bool) {
	var (
		i     atomic.Uint32
		ender atomic.Bool
		wg    sync.WaitGroup
	)
	if l < 1 {
		l = 1
	}
	wg.Add(int(l))
	for n := 0; n < int(l); n++ {
		go func() {
			defer wg.Done()
			for !ender.Load() {
				next := i.Add(1)
				if next == math.MaxUint32 {
					ender.Store(true)
					return
				}
				if yield(next-1, &ender) {
					ender.Store(true)
					return
				}
			}
		}()
	}
	wg.Wait()
}
