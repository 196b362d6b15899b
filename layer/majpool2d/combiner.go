package majpool2d

// Put sets the n-th vote.
func (s *MajPool2D) Put(n int, v bool) {
	s.vec[n] = v
}

// cell reports whether the majority of the votes of cell c is true.
func (s *MajPool2D) cell(c int) bool {
	var w int
	for r := 0; r < s.repeat; r++ {
		if s.vec[c*s.repeat+r] {
			w++
		}
	}
	return 2*w > s.repeat
}

// Disregard tells whether the other votes of n's cell already decide the cell,
// so that the vote at n can't change any feature.
func (s *MajPool2D) Disregard(n int) bool {
	c := n / s.repeat
	var w int
	for r := 0; r < s.repeat; r++ {
		if c*s.repeat+r == n {
			continue
		}
		if s.vec[c*s.repeat+r] {
			w++
		}
	}
	return (2*w > s.repeat) == (2*(w+1) > s.repeat)
}

// Feature returns the bitmask of the cells of block m. Features repeat
// every width*height positions.
func (s *MajPool2D) Feature(m int) (o uint32) {
	sub := s.subwidth * s.subheight
	block := m % (s.width * s.height)
	for c := 0; c < sub; c++ {
		if s.cell(block*sub + c) {
			o |= 1 << uint(c)
		}
	}
	return
}
