package full

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureBits(t *testing.T) {
	c := MustNew(3, 1, 1).Lay()
	c.Put(0, true)
	c.Put(2, true)
	assert.Equal(t, uint32(1), c.Feature(0))
	assert.Equal(t, uint32(0), c.Feature(1))
	assert.Equal(t, uint32(1), c.Feature(2))
	assert.False(t, c.Disregard(1))
}

func TestFeatureWholeVector(t *testing.T) {
	c := MustNew(5, 0, 5).Lay()
	c.Put(1, true)
	c.Put(4, true)
	assert.Equal(t, uint32(0x12), c.Feature(0))
	assert.Equal(t, uint32(0x12), c.Feature(3))
}

func TestNewRejects(t *testing.T) {
	_, err := New(0, 1, 1)
	assert.Error(t, err)
	_, err = New(3, 1, 33)
	assert.Error(t, err)
}
