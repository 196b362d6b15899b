package parallel

import "crypto/sha256"
import "encoding/binary"
import "hash"
import "sync"

// Hasher digests n uint16 values put in any order from any goroutine. The digest
// depends only on the values and their positions. Each 64 byte block carries 30
// values and 30 presence marks split between its first and last two bytes.
type Hasher struct {
	mut  sync.Mutex
	sha  hash.Hash
	ate  int
	data [][64]byte
}

// NewUint16Hasher creates a hasher for n values
func NewUint16Hasher(n int) *Hasher {
	return &Hasher{
		sha:  sha256.New(),
		data: make([][64]byte, (29+n)/30),
	}
}

func (h *Hasher) ready() bool {
	if h.ate >= len(h.data) {
		return false
	}
	return h.data[h.ate][0]|128 == 0xff && h.data[h.ate][1] == 0xff &&
		h.data[h.ate][62]|128 == 0xff && h.data[h.ate][63] == 0xff
}

func (h *Hasher) eat() {
	h.sha.Write(h.data[h.ate][:])
	h.ate++
}

// MustPutUint16 stores value at position n. It panics when position n was already written.
func (h *Hasher) MustPutUint16(n int, value uint16) {
	block := n / 30
	offset := (n % 30) * 2
	position := n % 30

	h.mut.Lock()
	defer h.mut.Unlock()

	if block < h.ate {
		panic("already consumed block")
	}

	var markBytes []byte
	var pos uint
	if position < 15 {
		markBytes = h.data[block][0:2]
		pos = uint(position)
	} else {
		markBytes = h.data[block][62:64]
		pos = uint(position - 15)
	}

	currentMark := binary.BigEndian.Uint16(markBytes)
	mask := uint16(1) << pos
	if (currentMark & mask) != 0 {
		panic("duplicate write")
	}
	binary.BigEndian.PutUint16(markBytes, currentMark|mask)

	h.data[block][2+offset] = byte(value)
	h.data[block][2+offset+1] = byte(value >> 8)

	for h.ready() {
		h.eat()
	}
}

// Sum digests the remaining blocks and returns the final digest. The hasher
// can't be reused after Sum.
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	for h.ate < len(h.data) {
		h.eat()
	}
	if h.ate == len(h.data) {
		copy(ret[:], h.sha.Sum(nil))
		h.ate = 0
		h.data = nil
	}
	h.mut.Unlock()
	return
}
