// Package hashtron implements a hashtron (classifier)
package hashtron

// Hashtron represents individual hashtron (classifier) in memory
type Hashtron struct {
	program [][2]uint32
	bits    byte

	quaternary []byte
}

// Get gets the hashing command at position n
func (h Hashtron) Get(n int) (s uint32, max uint32) {
	return h.program[n][0], h.program[n][1]
}

// Len gets the number of hashing commands (size of hashtron program)
func (h Hashtron) Len() int {
	return len(h.program)
}

// LenQ gets the size of learned data (size of quaternary filter)
func (h Hashtron) LenQ() int {
	return len(h.quaternary)
}

// Xor is the output mask applied after the last command. Trained hashtrons need none.
func (h Hashtron) Xor() uint32 {
	return 0
}

// Bits determines the number of output bits returned by hashtron using Forward
func (h Hashtron) Bits() byte {
	return h.bits
}

// SetBits sets the number of output bits returned by hashtron using Forward
func (h *Hashtron) SetBits(bits byte) {
	h.bits = bits
}

// Program returns a copy of the hashing commands.
func (h Hashtron) Program() [][2]uint32 {
	return append([][2]uint32(nil), h.program...)
}

// Quaternary returns a copy of the quaternary filter answering after the program.
func (h Hashtron) Quaternary() []byte {
	return append([]byte(nil), h.quaternary...)
}
