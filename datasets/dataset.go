// Package datasets implements the boolean datasets hashtrons are trained on
package datasets

// Dataset maps an input feature to the bit a hashtron should answer with
type Dataset map[uint32]bool

// Init initializes the dataset
func (d *Dataset) Init() {
	*d = make(map[uint32]bool)
}

// SplittedDataset holds the false keys at index 0 and the true keys at index 1
type SplittedDataset [2]map[uint32]struct{}

// SplitDataset splits dataset into a true set and a false set
func SplitDataset(d Dataset) (o SplittedDataset) {
	o[0] = make(map[uint32]struct{})
	o[1] = make(map[uint32]struct{})
	for k, v := range d {
		if v {
			o[1][k] = struct{}{}
		} else {
			o[0][k] = struct{}{}
		}
	}
	return
}

// Alphabet lists the keys of both sets, false keys first
func (d SplittedDataset) Alphabet() (o [2][]uint32) {
	for i := range d {
		o[i] = make([]uint32, 0, len(d[i]))
		for k := range d[i] {
			o[i] = append(o[i], k)
		}
	}
	return
}
