package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neurlang/imageclassifier/hash"
)

type program struct {
	cmds [][2]uint32
	xor  uint32
}

func (p program) Get(n int) (uint32, uint32) { return p.cmds[n][0], p.cmds[n][1] }
func (p program) Len() int                   { return len(p.cmds) }
func (p program) Xor() uint32                { return p.xor }

func TestBoolInfer(t *testing.T) {
	p := program{cmds: [][2]uint32{{7, 100}, {3, 2}}}
	for input := uint32(0); input < 50; input++ {
		want := hash.Hash(hash.Hash(input, 7, 100), 3, 2)&1 != 0
		assert.Equal(t, want, BoolInfer(input, p))
		p.xor = 1
		assert.Equal(t, !want, BoolInfer(input, p))
		p.xor = 0
	}
}

func TestBoolInferEmptyProgram(t *testing.T) {
	assert.False(t, BoolInfer(2, program{}))
	assert.True(t, BoolInfer(3, program{}))
}
