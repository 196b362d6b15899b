package feedforward

import "math/rand"

// Shuffle lists all hashtron numbers, shuffled within each layer. With reverse
// the last layer comes first.
func (f FeedforwardNetwork) Shuffle(rng *rand.Rand, reverse bool) (o []int) {
	o = make([]int, f.Len())
	for i := range o {
		o[i] = i
	}
	var base = 0
	for l := range f.layers {
		seg := o[base : base+len(f.layers[l])]
		rng.Shuffle(len(seg), func(i, j int) { seg[i], seg[j] = seg[j], seg[i] })
		base += len(f.layers[l])
	}
	if reverse {
		for i := 0; 2*i < len(o); i++ {
			o[i], o[len(o)-i-1] = o[len(o)-i-1], o[i]
		}
	}
	return o
}
