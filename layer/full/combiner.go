package full

// Put inserts a boolean at position n.
func (f *Full) Put(n int, v bool) {
	f.vec[n] = v
}

// Feature returns the n-th feature from the combiner. The first input read
// lands in the lowest bit.
func (f *Full) Feature(n int) (o uint32) {
	n *= int(f.bits)
	for pos := n; pos < n+int(f.maxbits) && pos < len(f.vec); pos++ {
		if f.vec[pos] {
			o |= 1 << uint(pos-n)
		}
	}
	return
}

// Disregard is always false, every input lands in some feature bit.
func (f *Full) Disregard(n int) bool {
	return false
}
