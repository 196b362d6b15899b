package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeBits(t *testing.T) {
	for classes, bits := range map[int]int{2: 1, 3: 2, 4: 2, 5: 3, 131: 8, 256: 8, 257: 9} {
		assert.Equal(t, bits, CodeBits(classes), "classes %d", classes)
	}
}

func TestNew(t *testing.T) {
	m, err := New(131, DefaultArchitecture)
	require.NoError(t, err)
	assert.Equal(t, 131, m.Classes)
	assert.Equal(t, 64*3+16*3+8, m.Net.Len())
	assert.Equal(t, 6, m.Net.LenLayers())
	assert.Equal(t, byte(8), m.Net.GetLastCells())
	assert.Equal(t, uint32(256), m.Net.GetClasses())
}

func TestNewRejects(t *testing.T) {
	_, err := New(1, DefaultArchitecture)
	assert.ErrorIs(t, err, ErrTooFewClasses)
	_, err = New(1<<17, DefaultArchitecture)
	assert.Error(t, err)
}

func TestNewWithWeights(t *testing.T) {
	src, err := New(3, Architecture{Repeat: 1})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "weights_best.json.lzw")
	require.NoError(t, src.Net.WriteCompressedWeightsToFile(path))

	dst, err := NewWithWeights(3, Architecture{Repeat: 1}, path)
	require.NoError(t, err)
	for i := 0; i < src.Net.Len(); i++ {
		assert.Equal(t, src.Net.GetHashtron(i).Program(), dst.Net.GetHashtron(i).Program())
	}

	_, err = NewWithWeights(5, Architecture{Repeat: 1}, path)
	assert.Error(t, err)
}
