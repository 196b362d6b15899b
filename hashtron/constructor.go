package hashtron

import "math/rand"

// New creates a hashtron running program and returning bits output bits.
// A nil program yields an untrained hashtron answering with a random bit per input.
func New(program [][2]uint32, bits byte) (h *Hashtron, err error) {
	h = new(Hashtron)
	if bits == 0 {
		bits = 1
	}
	if program == nil {
		h.program = [][2]uint32{{rand.Uint32() >> 1, 2}}
	} else {
		h.program = program
	}
	h.bits = bits
	return
}

// NewFiltered creates a hashtron running program and then looking the result up
// in a quaternary filter. The program may be empty, the filter may not.
func NewFiltered(program [][2]uint32, bits byte, filter []byte) (h *Hashtron, err error) {
	if len(filter) == 0 {
		return nil, ErrEmptyProgram
	}
	if bits == 0 {
		bits = 1
	}
	return &Hashtron{
		program:    append([][2]uint32(nil), program...),
		bits:       bits,
		quaternary: filter,
	}, nil
}
