// Package inference evaluates a single hashtron program without the training framework
package inference

import "github.com/neurlang/imageclassifier/hash"

// Model is a hashtron program: a chain of (salt, modulo) hashing commands.
type Model interface {
	Get(n int) (s uint32, max uint32)
	Len() int
	Xor() uint32
}

// BoolInfer runs input through the hashing chain of m and reports the resulting bit.
func BoolInfer(input uint32, m Model) bool {
	for i := 0; i < m.Len(); i++ {
		var s, max = m.Get(i)
		input = hash.Hash(input, s, max)
	}
	input &= 1
	input ^= m.Xor()
	return input != 0
}
