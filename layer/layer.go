// Package layer defines the combiner layers placed between hashtron layers
package layer

// Layer is the layer which can be used for instantiating a combiner
type Layer interface {

	// Lay creates a fresh combiner
	Lay() Combiner

	// Inputs reports how many hashtron outputs the combiner consumes
	Inputs() int
}
