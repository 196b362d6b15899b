package hashtron

import "github.com/neurlang/imageclassifier/hash"
import "github.com/neurlang/imageclassifier/inference"
import "github.com/neurlang/quaternary"

// Forward computes the hashtron output for command. Bit j of the output is the
// answer to command with j mixed into the upper half-word.
func (h Hashtron) Forward(command uint32, negate bool) (out uint16) {
	if h.Len() == 0 && h.LenQ() == 0 {
		return
	}
	for j := byte(0); j < h.Bits(); j++ {
		if h.bit(command|(uint32(j)<<16)) != negate {
			out |= 1 << j
		}
	}
	return
}

func (h Hashtron) bit(input uint32) bool {
	if h.LenQ() == 0 {
		return inference.BoolInfer(input, h)
	}
	for i := 0; i < h.Len(); i++ {
		var s, max = h.Get(i)
		input = hash.Hash(input, s, max)
	}
	return quaternary.Filter(h.quaternary).GetUint32(input)
}
