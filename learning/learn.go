// Package learning implements the learning stage of the hashtron classifier
package learning

import crypto_rand "crypto/rand"
import "encoding/binary"
import "fmt"
import "math"
import "math/rand"
import "sync"

import "github.com/neurlang/imageclassifier/hash"
import "github.com/neurlang/imageclassifier/parallel"

const progressBarWidth = 40

func progressBar(progress, width int) string {
	var b = make([]byte, width)
	for i := range b {
		if i < progress {
			b[i] = '='
		} else {
			b[i] = ' '
		}
	}
	return string(b)
}

// maxSteps bounds the number of reduction steps of one attempt
func maxSteps(maxl uint32) int {
	return 64 + 16*int(maxl)
}

func maxLen(alphabet [2][]uint32) uint32 {
	if len(alphabet[1]) > len(alphabet[0]) {
		return uint32(len(alphabet[1]))
	}
	return uint32(len(alphabet[0]))
}

// Reducing finds a hashtron program separating alphabet[0] (false) from alphabet[1] (true).
// Every step hashes both sets with a salt into a smaller modulo without mixing them,
// and the last step sends the false set to 0 and the true set to 1.
// It returns nil when no attempt succeeded.
func (h *HyperParameters) Reducing(alphabet [2][]uint32) [][2]uint32 {
	if len(alphabet[0])+len(alphabet[1]) == 0 {
		// garbage in, garbage out
		return nil
	}
	h.Defaults()
	var seed int64 = 1
	if h.Seed {
		var b [8]byte
		if _, err := crypto_rand.Read(b[:]); err == nil {
			seed = int64(binary.LittleEndian.Uint64(b[:]))
		}
	}
	var rng = rand.New(rand.NewSource(seed))

	alphabet = [2][]uint32{
		append([]uint32(nil), alphabet[0]...),
		append([]uint32(nil), alphabet[1]...),
	}
	// add a random value to an empty set, not present in the other set
	for i := 0; i < 2; i++ {
		if len(alphabet[i]) != 0 {
			continue
		}
		var other = make(map[uint32]struct{}, len(alphabet[1-i]))
		for _, v := range alphabet[1-i] {
			other[v] = struct{}{}
		}
		var r = rng.Uint32()
		for {
			if _, ok := other[r]; !ok {
				break
			}
			r++
		}
		alphabet[i] = append(alphabet[i], r)
	}

	for u := h.DeadlineRetry; u > 0; u-- {
		if h.Shuffle {
			rng.Shuffle(len(alphabet[0]), func(i, j int) { alphabet[0][i], alphabet[0][j] = alphabet[0][j], alphabet[0][i] })
			rng.Shuffle(len(alphabet[1]), func(i, j int) { alphabet[1][i], alphabet[1][j] = alphabet[1][j], alphabet[1][i] })
		}
		if program := h.reduce(alphabet, rng.Uint32()); program != nil {
			return program
		}
	}
	return nil
}

// initialModulo is maxl squared over factor, clamped to the uint32 range
func initialModulo(maxl, factor uint32) uint32 {
	if factor == 0 {
		factor = 1
	}
	var m = (uint64(maxl) * uint64(maxl)) / uint64(factor)
	if m > math.MaxUint32 {
		return math.MaxUint32
	}
	if m < 2 {
		return 2
	}
	return uint32(m)
}

// reduce walks the modulo down while the sets stay separable and back up by an
// eighth after every failed search, so it hovers where keys of one set merge.
// It gives up after too many failed searches in a row.
func (h *HyperParameters) reduce(alphabet [2][]uint32, center uint32) (program [][2]uint32) {
	var maxl = maxLen(alphabet)
	var maxmaxl = maxl
	var maxx = initialModulo(maxl, h.Factor)
	var failures int
	for step := 0; step < maxSteps(maxmaxl); step++ {
		var final = maxl == 1
		if final {
			if len(program) > 0 && alphabet[0][0] == 0 && alphabet[1][0] == 1 {
				if !h.DisableProgressBar {
					fmt.Printf("\r[%s] 100%% SOLUTION SIZE = %d \n", progressBar(progressBarWidth, progressBarWidth), len(program))
				}
				return program
			}
			maxx = 2
		} else if maxx < 2 {
			maxx = 2
		}
		if !h.DisableProgressBar && maxmaxl > 0 {
			progress := progressBarWidth - int(maxl*progressBarWidth/maxmaxl)
			fmt.Printf("\r[%s] %d%% PROBLEM SIZE = %d ", progressBar(progress, progressBarWidth), 100-int(maxl*100/maxmaxl), maxx)
		}

		salt, ok := h.search(alphabet, maxx, center, final)
		if !ok {
			failures++
			if failures > 8*h.DeadlineRetry {
				return nil
			}
			if !final {
				if maxx > math.MaxUint32-maxx/8-1 {
					return nil
				}
				maxx += maxx/8 + 1
			}
			center = salt
			continue
		}
		failures = 0

		// accept the solution, apply it to the sets
		program = append(program, [2]uint32{salt, maxx})
		for j := 0; j < 2; j++ {
			var set = make(map[uint32]struct{}, len(alphabet[j]))
			for _, v := range alphabet[j] {
				set[hash.Hash(v, salt, maxx)] = struct{}{}
			}
			var next = make([]uint32, 0, len(set))
			for k := range set {
				next = append(next, k)
			}
			alphabet[j] = next
		}
		// store last solution salt as the future center for xor search heuristics
		center = salt

		maxl = maxLen(alphabet)
		var sub = h.Subtractor
		if sub >= maxl {
			sub = maxl - 1
		}
		if maxl > 0 {
			maxx = uint32(uint64(maxx) * (uint64(maxl-sub) * uint64(maxl-sub)) / (uint64(maxl) * uint64(maxl)))
		}
	}
	return nil
}

// search looks for a salt hashing both sets into [0, maxx) without mixing them.
// In the final step it also requires the false set at 0 and the true set at 1.
// On failure it returns the next center to search around.
func (h *HyperParameters) search(alphabet [2][]uint32, maxx, center uint32, final bool) (salt uint32, ok bool) {
	var mut sync.Mutex
	var win = false
	var deadline = uint32(h.DeadlineMs)
	parallel.Loop(h.Threads).LoopUntil(func(nonce uint32, ender parallel.LoopStopper) bool {
		if nonce >= deadline {
			return true
		}
		var candidate = center ^ nonce
		if final {
			if hash.Hash(alphabet[0][0], candidate, 2) != 0 || hash.Hash(alphabet[1][0], candidate, 2) != 1 {
				return false
			}
		} else if !separates(alphabet, candidate, maxx, ender) {
			return false
		}
		mut.Lock()
		defer mut.Unlock()
		if !win {
			win, salt = true, candidate
		}
		return true
	})
	if !win {
		return center ^ deadline, false
	}
	return salt, true
}

// separates reports whether no hash of alphabet[0] collides with a hash of alphabet[1]
func separates(alphabet [2][]uint32, salt, maxx uint32, ender parallel.LoopStopper) bool {
	const subwords = 16
	const twobitmask = 3
	var buf = make([]uint32, (maxx+subwords-1)/subwords)
	var par = hash.HashVectorizedParallelism()
	var salts = make([]uint32, par)
	for i := range salts {
		salts[i] = salt
	}
	var outs = make([]uint32, par)
	for j := uint32(0); j < 2; j++ {
		var set = alphabet[j]
		for i := 0; i < len(set); i += par {
			if ender.Load() {
				return false
			}
			var n = par
			if i+n > len(set) {
				n = len(set) - i
			}
			hash.HashVectorized(outs[:n], set[i:i+n], salts[:n], maxx)
			for _, v := range outs[:n] {
				w0 := v / subwords
				w1 := (v % subwords) << 1
				buf[w0] |= (1 + j) << w1
				if (buf[w0]>>w1)&twobitmask == twobitmask {
					return false
				}
			}
		}
	}
	return true
}
