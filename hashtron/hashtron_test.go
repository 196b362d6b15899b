package hashtron

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/neurlang/quaternary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/imageclassifier/hash"
)

func TestNewDefaults(t *testing.T) {
	h, err := New(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), h.Bits())
	assert.Equal(t, 1, h.Len())
	_, max := h.Get(0)
	assert.Equal(t, uint32(2), max)
}

func TestForwardFollowsProgram(t *testing.T) {
	h, err := New([][2]uint32{{11, 1000}, {5, 2}}, 2)
	require.NoError(t, err)
	for cmd := uint32(0); cmd < 100; cmd++ {
		var want uint16
		for j := uint32(0); j < 2; j++ {
			if hash.Hash(hash.Hash(cmd|j<<16, 11, 1000), 5, 2)&1 != 0 {
				want |= 1 << j
			}
		}
		assert.Equal(t, want, h.Forward(cmd, false))
		assert.Equal(t, want^3, h.Forward(cmd, true))
	}
}

func FuzzHashtronSerialize(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	f.Fuzz(func(t *testing.T, buffer []byte) {
		var program [][2]uint32
		for i := 0; i+8 <= len(buffer); i += 8 {
			program = append(program, [2]uint32{
				uint32(buffer[i]) | uint32(buffer[i+1])<<8 | uint32(buffer[i+2])<<16 | uint32(buffer[i+3])<<24,
				uint32(buffer[i+4]) | uint32(buffer[i+5])<<8 | uint32(buffer[i+6])<<16 | uint32(buffer[i+7])<<24,
			})
		}
		if len(program) == 0 {
			return
		}
		tron, err := New(program, 1)
		require.NoError(t, err)

		var js bytes.Buffer
		require.NoError(t, tron.WriteJson(&js))
		var fromJson Hashtron
		require.NoError(t, fromJson.ReadJson(&js))
		assert.Equal(t, program, fromJson.Program())

		var q bytes.Buffer
		require.NoError(t, tron.WriteQuantized(&q))
		var fromQuant Hashtron
		require.NoError(t, fromQuant.ReadQuantized(bufio.NewReader(&q)))
		assert.Equal(t, program, fromQuant.Program())
		assert.Equal(t, tron.Bits(), fromQuant.Bits())
	})
}

func TestQuantizedIsCompact(t *testing.T) {
	tron, err := New([][2]uint32{{100, 50}, {1, 2}}, 1)
	require.NoError(t, err)
	var q bytes.Buffer
	require.NoError(t, tron.WriteQuantized(&q))
	assert.Equal(t, []byte{1, 2, 100, 50, 1, 2, 0}, q.Bytes())
}

func TestReadQuantizedTruncated(t *testing.T) {
	var h Hashtron
	err := h.ReadQuantized(bytes.NewReader([]byte{1, 2, 100}))
	assert.Error(t, err)
	err = h.ReadQuantized(bytes.NewReader([]byte{1, 0}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	err = h.ReadQuantized(bytes.NewReader([]byte{1, 0, 0}))
	assert.ErrorIs(t, err, ErrEmptyProgram)
	err = h.ReadQuantized(bytes.NewReader([]byte{1, 0, 3, 7}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestUnmarshalEmptyProgram(t *testing.T) {
	var h Hashtron
	assert.ErrorIs(t, h.UnmarshalJSON([]byte(`{"bits":1,"program":[]}`)), ErrEmptyProgram)
}

func TestFilteredAnswersStoredKeys(t *testing.T) {
	var set = map[uint32]bool{}
	for k := uint32(0); k < 200; k++ {
		set[k*2654435761] = k%3 == 0
	}
	filter := quaternary.Make(set)
	h, err := NewFiltered(nil, 1, filter)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, len(filter), h.LenQ())
	for k, v := range set {
		var want uint16
		if v {
			want = 1
		}
		assert.Equal(t, want, h.Forward(k, false), "key %d", k)
		assert.Equal(t, want^1, h.Forward(k, true), "key %d", k)
	}
}

func TestFilteredAfterProgram(t *testing.T) {
	var program = [][2]uint32{{9, 1 << 30}}
	var set = map[uint32]bool{}
	for k := uint32(0); k < 50; k++ {
		set[hash.Hash(k, 9, 1<<30)] = k%2 == 1
	}
	h, err := NewFiltered(program, 1, quaternary.Make(set))
	require.NoError(t, err)
	for k := uint32(0); k < 50; k++ {
		assert.Equal(t, uint16(k%2), h.Forward(k, false), "input %d", k)
	}
}

func TestNewFilteredRejectsEmptyFilter(t *testing.T) {
	_, err := NewFiltered([][2]uint32{{1, 2}}, 1, nil)
	assert.ErrorIs(t, err, ErrEmptyProgram)
}

func TestFilteredSerialize(t *testing.T) {
	var set = map[uint32]bool{1: true, 2: false, 300: true, 70000: false}
	tron, err := NewFiltered(nil, 1, quaternary.Make(set))
	require.NoError(t, err)

	var js bytes.Buffer
	require.NoError(t, tron.WriteJson(&js))
	var fromJson Hashtron
	require.NoError(t, fromJson.ReadJson(&js))
	assert.Equal(t, tron.Quaternary(), fromJson.Quaternary())

	var q bytes.Buffer
	require.NoError(t, tron.WriteQuantized(&q))
	var fromQuant Hashtron
	require.NoError(t, fromQuant.ReadQuantized(bufio.NewReader(&q)))
	assert.Equal(t, tron.Quaternary(), fromQuant.Quaternary())
	assert.Equal(t, 0, fromQuant.Len())

	for k, v := range set {
		assert.Equal(t, v, fromJson.Forward(k, false) == 1)
		assert.Equal(t, v, fromQuant.Forward(k, false) == 1)
	}
}
