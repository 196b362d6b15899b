package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/imageclassifier/datasets/imagefolder"
	"github.com/neurlang/imageclassifier/model"
	"github.com/neurlang/imageclassifier/net/feedforward"
)

var arch = model.Architecture{Repeat: 1, Premodulo: 4096}

type source []feedforward.FeedforwardNetworkInOutput

func (s source) N() int      { return len(s) }
func (s source) Len() int    { return 1 }
func (s source) OnEpochEnd() {}
func (s source) Batch(ctx context.Context, i int) ([]feedforward.FeedforwardNetworkInOutput, error) {
	return s, nil
}

func images(n int) (s source) {
	for i := 0; i < n; i++ {
		levels := make([]byte, 16*16)
		for j := range levels {
			levels[j] = byte((i*7 + j*j) % imagefolder.Levels)
		}
		s = append(s, imagefolder.NewSample(levels, 16, 16, uint16(i%3), arch.Repeat))
	}
	return
}

func TestExportAndEvaluate(t *testing.T) {
	m, err := model.New(3, arch)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "lite-models")
	plain, quant, err := Export(m, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PlainName), plain)
	assert.Equal(t, filepath.Join(dir, QuantName), quant)
	assert.FileExists(t, plain)
	assert.FileExists(t, quant)

	data := images(12)
	var want int
	for _, s := range data {
		if m.Net.Infer(s) == s.Output() {
			want++
		}
	}
	for _, path := range []string{plain, quant} {
		accuracy, err := EvaluateArtifact(context.Background(), path, 3, arch, data)
		require.NoError(t, err)
		assert.Equal(t, float64(want)/12, accuracy, path)
	}
}

func TestQuantizedIsSmaller(t *testing.T) {
	m, err := model.New(131, model.DefaultArchitecture)
	require.NoError(t, err)
	plain, quant, err := Export(m, t.TempDir())
	require.NoError(t, err)
	p, err := os.Stat(plain)
	require.NoError(t, err)
	q, err := os.Stat(quant)
	require.NoError(t, err)
	assert.Less(t, q.Size(), p.Size())
}

func TestLoadRejectsOtherShape(t *testing.T) {
	m, err := model.New(3, arch)
	require.NoError(t, err)
	_, quant, err := Export(m, t.TempDir())
	require.NoError(t, err)

	_, err = Load(quant, 9, arch)
	assert.ErrorIs(t, err, feedforward.ErrWeightsMismatch)
	_, err = Load(filepath.Join(t.TempDir(), "missing.hnq"), 3, arch)
	assert.Error(t, err)
}
