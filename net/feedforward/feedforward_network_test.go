package feedforward

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/neurlang/quaternary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/imageclassifier/datasets"
	"github.com/neurlang/imageclassifier/hashtron"
	"github.com/neurlang/imageclassifier/layer/full"
	"github.com/neurlang/imageclassifier/layer/majpool2d"
)

type sample struct {
	feat uint32
	out  uint16
}

func (s sample) Feature(n int) uint32 {
	return s.feat*31 + uint32(n)
}

func (s sample) Output() uint16 {
	return s.out
}

func pooledNet() (net FeedforwardNetwork) {
	net.NewLayer(4, 0)
	net.NewCombiner(majpool2d.MustNew(1, 1, 2, 2, 1))
	net.NewLayer(1, 0)
	return
}

func twoBitNet(premodulo uint32) (net FeedforwardNetwork) {
	net.NewLayerP(2, 0, premodulo)
	net.NewCombiner(full.MustNew(2, 1, 1))
	return
}

func TestTopology(t *testing.T) {
	net := pooledNet()
	require.NoError(t, net.Validate())
	assert.Equal(t, 5, net.Len())
	assert.Equal(t, 3, net.LenLayers())
	assert.Equal(t, 0, net.GetLayer(3))
	assert.Equal(t, 2, net.GetLayer(4))
	assert.Equal(t, -1, net.GetLayer(5))
	assert.Equal(t, 3, net.GetPosition(3))
	assert.Equal(t, 0, net.GetPosition(4))
	assert.Equal(t, 0, net.GetLayerPosition(2, 4))
	assert.Equal(t, -1, net.GetLayerPosition(0, 4))
	assert.NotNil(t, net.GetHashtron(4))
	assert.Nil(t, net.GetHashtron(5))
	assert.Equal(t, byte(1), net.GetBits())
	assert.Equal(t, uint32(2), net.GetClasses())
}

func TestValidateRejectsMismatchedCombiner(t *testing.T) {
	var net FeedforwardNetwork
	assert.ErrorIs(t, net.Validate(), ErrTopology)

	net.NewLayer(3, 0)
	net.NewCombiner(majpool2d.MustNew(1, 1, 2, 2, 1))
	assert.ErrorIs(t, net.Validate(), ErrTopology)

	var wide FeedforwardNetwork
	wide.NewLayer(2, 0)
	assert.ErrorIs(t, wide.Validate(), ErrTopology)
}

func TestInferAssemblesLastCells(t *testing.T) {
	net := twoBitNet(0)
	require.NoError(t, net.Validate())
	assert.Equal(t, byte(2), net.GetLastCells())
	assert.Equal(t, uint32(4), net.GetClasses())

	for feat := uint32(0); feat < 50; feat++ {
		in := sample{feat: feat}
		b0 := net.GetHashtron(0).Forward(in.Feature(0), false) & 1
		b1 := net.GetHashtron(1).Forward(in.Feature(1), false) & 1
		assert.Equal(t, b0|b1<<1, net.Infer(in))
	}
}

func TestTallyVotesForExpectedBit(t *testing.T) {
	net := twoBitNet(0)
	for feat := uint32(0); feat < 20; feat++ {
		for expected := uint16(0); expected < 4; expected++ {
			in := sample{feat: feat, out: expected}
			b0 := net.GetHashtron(0).Forward(in.Feature(0), false) & 1
			b1 := net.GetHashtron(1).Forward(in.Feature(1), false) & 1

			var tally datasets.Tally
			tally.Init()
			net.Tally(in, 0, &tally, nil)

			d := tally.Dataset()
			assert.Equal(t, expected&1 != 0, d[in.Feature(0)])
			assert.Equal(t, b0 != expected&1 && b1 == (expected>>1)&1, tally.GetImprovementPossible())
		}
	}
}

func TestTallyFinalHashtron(t *testing.T) {
	var net FeedforwardNetwork
	net.NewLayer(1, 0)
	require.NoError(t, net.Validate())

	for _, want := range []uint16{0, 1} {
		in := sample{feat: 7, out: want}
		actual := net.GetHashtron(0).Forward(in.Feature(0), false) & 1

		var tally datasets.Tally
		tally.Init()
		net.Tally(in, 0, &tally, HammingLoss)
		assert.Equal(t, want == 1, tally.Dataset()[in.Feature(0)])
		assert.Equal(t, actual != want, tally.GetImprovementPossible())
	}
}

func TestTallyIgnoresUnknownHashtron(t *testing.T) {
	net := twoBitNet(0)
	var tally datasets.Tally
	tally.Init()
	net.Tally(sample{feat: 1, out: 3}, 9, &tally, nil)
	assert.Equal(t, 0, tally.Len())
}

func TestHammingLoss(t *testing.T) {
	assert.Equal(t, uint32(0), HammingLoss(5, 5))
	assert.Equal(t, uint32(1), HammingLoss(4, 5))
	assert.Equal(t, uint32(3), HammingLoss(0, 7))
}

func TestShuffleKeepsLayersTogether(t *testing.T) {
	net := pooledNet()
	rng := rand.New(rand.NewSource(3))

	order := net.Shuffle(rng, false)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, order)
	for _, n := range order[:4] {
		assert.Equal(t, 0, net.GetLayer(n))
	}
	assert.Equal(t, 4, order[4])

	reversed := net.Shuffle(rng, true)
	assert.Equal(t, 4, reversed[0])
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, reversed[1:])
}

func TestCompressedWeightsRoundTrip(t *testing.T) {
	src := pooledNet()
	var buf bytes.Buffer
	require.NoError(t, src.WriteCompressedWeights(&buf))

	dst := pooledNet()
	require.NoError(t, dst.ReadCompressedWeights(&buf))
	for i := 0; i < src.Len(); i++ {
		assert.Equal(t, src.GetHashtron(i).Program(), dst.GetHashtron(i).Program())
	}
	for feat := uint32(0); feat < 30; feat++ {
		assert.Equal(t, src.Infer(sample{feat: feat}), dst.Infer(sample{feat: feat}))
	}
}

func TestCompressedWeightsMismatch(t *testing.T) {
	src := pooledNet()
	var buf bytes.Buffer
	require.NoError(t, src.WriteCompressedWeights(&buf))

	dst := twoBitNet(0)
	before := dst.GetHashtron(0).Program()
	assert.ErrorIs(t, dst.ReadCompressedWeights(&buf), ErrWeightsMismatch)
	assert.Equal(t, before, dst.GetHashtron(0).Program())
}

func TestCompressedWeightsFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "weights.json.lzw")
	src := twoBitNet(0)
	require.NoError(t, src.WriteCompressedWeightsToFile(name))

	dst := twoBitNet(0)
	require.NoError(t, dst.ReadCompressedWeightsFromFile(name))
	assert.Equal(t, src.GetHashtron(1).Program(), dst.GetHashtron(1).Program())

	assert.Error(t, dst.ReadCompressedWeightsFromFile(filepath.Join(t.TempDir(), "missing")))
}

func TestQuantizedWeightsRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "model_quant.hnq")
	src := twoBitNet(4096)
	require.NoError(t, src.WriteQuantizedWeightsToFile(name))

	dst := twoBitNet(4096)
	require.NoError(t, dst.ReadQuantizedWeightsFromFile(name))
	for feat := uint32(0); feat < 30; feat++ {
		assert.Equal(t, src.Infer(sample{feat: feat}), dst.Infer(sample{feat: feat}))
	}
}

func TestQuantizedWeightsRejects(t *testing.T) {
	net := twoBitNet(4096)
	assert.ErrorIs(t, net.ReadQuantizedWeights(bytes.NewReader([]byte("nope"))), ErrQuantizedFormat)

	var buf bytes.Buffer
	require.NoError(t, net.WriteQuantizedWeights(&buf))
	other := twoBitNet(1024)
	assert.ErrorIs(t, other.ReadQuantizedWeights(&buf), ErrWeightsMismatch)
}

func TestFilteredHashtronWeightsRoundTrip(t *testing.T) {
	src := twoBitNet(0)
	var set = map[uint32]bool{}
	for feat := uint32(0); feat < 30; feat++ {
		set[src.feature(sample{feat: feat}, 0, 0)] = feat%3 == 0
	}
	tron, err := hashtron.NewFiltered(nil, 1, quaternary.Make(set))
	require.NoError(t, err)
	*src.GetHashtron(0) = *tron

	var lzw, quant bytes.Buffer
	require.NoError(t, src.WriteCompressedWeights(&lzw))
	require.NoError(t, src.WriteQuantizedWeights(&quant))

	fromJson := twoBitNet(0)
	require.NoError(t, fromJson.ReadCompressedWeights(&lzw))
	fromQuant := twoBitNet(0)
	require.NoError(t, fromQuant.ReadQuantizedWeights(&quant))
	for _, dst := range []FeedforwardNetwork{fromJson, fromQuant} {
		assert.Equal(t, tron.Quaternary(), dst.GetHashtron(0).Quaternary())
		for feat := uint32(0); feat < 30; feat++ {
			assert.Equal(t, src.Infer(sample{feat: feat}), dst.Infer(sample{feat: feat}))
		}
	}
}
