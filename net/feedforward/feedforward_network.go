// Package feedforward implements a feedforward network type
package feedforward

import "errors"
import "fmt"

import "github.com/neurlang/imageclassifier/datasets"
import "github.com/neurlang/imageclassifier/hash"
import "github.com/neurlang/imageclassifier/hashtron"
import "github.com/neurlang/imageclassifier/layer"

// Intermediate is an intermediate value used as both layer input and layer output in optimization
type Intermediate interface {

	// Feature extracts n-th feature from Intermediate
	Feature(n int) uint32

	// Disregard reports whether Intermediate doesn't regard n-th bit as affecting the output
	Disregard(n int) bool
}

// SingleValue is a single value returned by the final layer
type SingleValue uint32

// Feature extracts the feature from SingleValue
func (v SingleValue) Feature(n int) uint32 {
	return uint32(v)
}

// Disregard reports whether SingleValue doesn't regard n-th bit as affecting the output
func (v SingleValue) Disregard(n int) bool {
	return false
}

// FeedforwardNetworkInput is one individual input to the feedforward network
type FeedforwardNetworkInput interface {
	Feature(n int) uint32
}

// FeedforwardNetworkInOutput is one individual sample with its expected network output
type FeedforwardNetworkInOutput interface {
	Feature(n int) uint32
	Output() uint16
}

// ErrTopology is returned by Validate when layers and combiners don't fit together
var ErrTopology = errors.New("network topology is invalid")

// FeedforwardNetwork is the feedforward network
type FeedforwardNetwork struct {
	layers    [][]hashtron.Hashtron
	mapping   []byte
	combiners []layer.Layer
	premodulo []uint32
}

// Len returns the number of hashtrons which need to be trained inside the network.
func (f FeedforwardNetwork) Len() (o int) {
	for _, v := range f.layers {
		o += len(v)
	}
	return
}

// LenLayers returns the number of layers. Each Layer and Combiner counts as a layer here.
func (f FeedforwardNetwork) LenLayers() int {
	return len(f.layers)
}

// GetLayer gets the layer number of hashtron based on hashtron number. Returns -1 on failure.
func (f FeedforwardNetwork) GetLayer(n int) int {
	for i, v := range f.layers {
		if n < len(v) {
			return i
		}
		n -= len(v)
	}
	return -1
}

// GetPosition gets the position of hashtron within layer based on the overall
// hashtron number. Returns -1 on failure.
func (f FeedforwardNetwork) GetPosition(n int) int {
	for _, v := range f.layers {
		if n < len(v) {
			return n
		}
		n -= len(v)
	}
	return -1
}

// GetLayerPosition gets the position of hashtron within layer based on the
// overall hashtron number and overall layer. Returns -1 on failure.
func (f FeedforwardNetwork) GetLayerPosition(l, n int) int {
	for i, v := range f.layers {
		if n < len(v) {
			if l == i {
				return n
			}
			return -1
		}
		n -= len(v)
	}
	return -1
}

// GetHashtron gets n-th hashtron pointer in the network. The trainer writes
// retrained hashtrons through it.
func (f FeedforwardNetwork) GetHashtron(n int) *hashtron.Hashtron {
	for _, v := range f.layers {
		if n < len(v) {
			return &v[n]
		}
		n -= len(v)
	}
	return nil
}

// NewLayer adds a hashtron layer to the end of network with n hashtrons, each recognizing bits bits.
func (f *FeedforwardNetwork) NewLayer(n int, bits byte) {
	f.NewLayerP(n, bits, 0)
}

// NewLayerP adds a hashtron layer to the end of network with n hashtrons, each recognizing bits bits, and input feature pre-modulo.
func (f *FeedforwardNetwork) NewLayerP(n int, bits byte, premodulo uint32) {
	var layer = make([]hashtron.Hashtron, n)
	for i := range layer {
		h, _ := hashtron.New(nil, bits)
		layer[i] = *h
	}
	if bits == 0 {
		bits = 1
	}
	f.layers = append(f.layers, layer)
	f.mapping = append(f.mapping, bits)
	f.combiners = append(f.combiners, nil)
	f.premodulo = append(f.premodulo, premodulo)
}

// NewCombiner adds a combiner layer to the end of network
func (f *FeedforwardNetwork) NewCombiner(layer layer.Layer) {
	f.layers = append(f.layers, nil)
	f.mapping = append(f.mapping, 0)
	f.combiners = append(f.combiners, layer)
	f.premodulo = append(f.premodulo, 0)
}

// Validate checks that hashtron layers and combiners alternate and that every
// combiner consumes exactly the hashtrons of the layer before it.
func (f FeedforwardNetwork) Validate() error {
	if len(f.layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrTopology)
	}
	for l := range f.layers {
		isCombiner := f.combiners[l] != nil
		if isCombiner != (l%2 == 1) {
			return fmt.Errorf("%w: layer %d out of order", ErrTopology, l)
		}
		if isCombiner && f.combiners[l].Inputs() != len(f.layers[l-1]) {
			return fmt.Errorf("%w: combiner %d takes %d inputs, layer has %d hashtrons",
				ErrTopology, l, f.combiners[l].Inputs(), len(f.layers[l-1]))
		}
		if !isCombiner && len(f.layers[l]) == 0 {
			return fmt.Errorf("%w: layer %d is empty", ErrTopology, l)
		}
		if !isCombiner && l+1 == len(f.layers) && len(f.layers[l]) != 1 {
			return fmt.Errorf("%w: last layer needs a combiner", ErrTopology)
		}
	}
	return nil
}

// feature reads the input feature of hashtron i in layer l
func (f FeedforwardNetwork) feature(in FeedforwardNetworkInput, l, i int) uint32 {
	var feat = in.Feature(i)
	if f.premodulo[l] != 0 {
		feat = hash.Hash(feat, uint32(i), f.premodulo[l])
	}
	return feat
}

// Forward solves the intermediate value (net output after layer l based on that layer's input in) and the bit
// returned by worst hashtron is optionally negated (using neg == 1) and returned as computed.
func (f FeedforwardNetwork) Forward(in FeedforwardNetworkInput, l, worst, neg int) (inter Intermediate, computed bool) {
	if len(f.combiners) > l+1 && f.combiners[l+1] != nil {
		var combiner = f.combiners[l+1].Lay()
		for i := range f.layers[l] {
			var bit = f.layers[l][i].Forward(f.feature(in, l, i), (i == worst) && (neg == 1))
			combiner.Put(i, bit&1 != 0)
			if i == worst {
				computed = bit&1 != 0
			}
		}
		return combiner, computed
	}
	var val = f.layers[l][0].Forward(f.feature(in, l, 0), (worst == 0) && (neg == 1))
	return SingleValue(val), val&1 != 0
}

// output assembles the network output from the final intermediate value
func (f FeedforwardNetwork) output(inter Intermediate) (val uint16) {
	if len(f.combiners) == 0 || f.combiners[len(f.combiners)-1] == nil {
		return uint16(inter.Feature(0)) & uint16((uint32(1)<<f.GetBits())-1)
	}
	for j := byte(0); j < 16 && j < f.GetLastCells(); j++ {
		val |= uint16(inter.Feature(int(j))&1) << uint16(j)
	}
	return
}

// Infer infers the network output (class code) based on input
func (f FeedforwardNetwork) Infer(in FeedforwardNetworkInput) uint16 {
	var inter Intermediate
	for l_prev := 0; l_prev < f.LenLayers(); l_prev += 2 {
		inter, _ = f.Forward(in, l_prev, -1, 0)
		in = inter
	}
	return f.output(inter)
}

// Tally tallies the network on input/output pair with respect to to-be-trained worst hashtron.
// The tally is stored into thread safe structure Tally. Loss compares an actual output
// with the expected one, 0 meaning correct.
func (f *FeedforwardNetwork) Tally(io FeedforwardNetworkInOutput, worst int, tally *datasets.Tally,
	loss func(actual, expected uint16) uint32) {
	if loss == nil {
		loss = HammingLoss
	}
	var expected = io.Output()
	var in FeedforwardNetworkInput = io
	l := f.GetLayer(worst)
	if l < 0 {
		return
	}
	pos := f.GetPosition(worst)
	for l_prev := 0; l_prev < l; l_prev += 2 {
		in, _ = f.Forward(in, l_prev, -1, 0)
	}
	ifw := f.feature(in, l, pos)

	if len(f.combiners) > l+1 && f.combiners[l+1] != nil {
		var predicted [2]uint32
		var compute [2]int8
		for neg := 0; neg < 2; neg++ {
			inter, computed := f.Forward(in, l, pos, neg)
			if computed {
				compute[neg] = 1
			} else {
				compute[neg] = -1
			}
			if neg == 0 && inter.Disregard(pos) {
				return
			}
			for l_post := l + 2; l_post < f.LenLayers(); l_post += 2 {
				inter, _ = f.Forward(inter, l_post, -1, 0)
			}
			predicted[neg] = loss(f.output(inter), expected)
		}
		switch {
		case predicted[0] == 0 && predicted[1] == 0:
			// we are correct anyway
		case predicted[0] == 0:
			tally.AddToCorrect(ifw, compute[0], false)
		case predicted[1] == 0:
			// shift to correct output
			tally.AddToCorrect(ifw, compute[1], true)
		case predicted[0] < predicted[1]:
			tally.AddToImprove(ifw, compute[0])
		case predicted[1] < predicted[0]:
			// shift towards better
			tally.AddToImprove(ifw, compute[1])
		}
		return
	}
	_, actual := f.Forward(in, l, pos, 0)
	want := expected&1 != 0
	var vote int8 = -1
	if want {
		vote = 1
	}
	tally.AddToCorrect(ifw, vote, actual != want)
}

// HammingLoss counts the differing bits of actual and expected
func HammingLoss(actual, expected uint16) (o uint32) {
	for x := actual ^ expected; x != 0; x &= x - 1 {
		o++
	}
	return
}

// GetBits reports the number of bits predicted by the last hashtron layer
func (f *FeedforwardNetwork) GetBits() (ret byte) {
	for l := len(f.mapping) - 1; l >= 0; l-- {
		if f.mapping[l] > 0 {
			return f.mapping[l]
		}
	}
	return 1
}

// GetLastCells gets the number of hashtrons in the last hashtron layer
func (f *FeedforwardNetwork) GetLastCells() (ret byte) {
	if len(f.layers) == 0 {
		return 0
	}
	ret = byte(len(f.layers[len(f.layers)-1]))
	if ret == 0 && len(f.layers) >= 2 {
		ret = byte(len(f.layers[len(f.layers)-2]))
	}
	return
}

// GetClasses reports the number of distinct outputs of this network
func (f *FeedforwardNetwork) GetClasses() uint32 {
	if len(f.combiners) > 0 && f.combiners[len(f.combiners)-1] != nil {
		return uint32(1) << f.GetLastCells()
	}
	return uint32(1) << f.GetBits()
}
