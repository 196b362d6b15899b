// Package majpool2d implements a 2D majority pooling layer and combiner
package majpool2d

import "github.com/neurlang/imageclassifier/layer"

type MajPool2DLayer struct {
	width, height, subwidth, subheight, repeat int
}

// MajPool2D groups hashtron outputs into width*height blocks of subwidth*subheight
// cells. Each cell is voted on by repeat hashtrons.
type MajPool2D struct {
	vec                                        []bool
	width, height, subwidth, subheight, repeat int
}

// New creates a new MajPool2D layer with size, subsize and repeat
func New(width, height, subwidth, subheight, repeat int) (o *MajPool2DLayer, err error) {
	if width <= 0 || height <= 0 || subwidth <= 0 || subheight <= 0 || repeat <= 0 {
		return nil, layer.ErrSize
	}
	if subwidth*subheight > 32 {
		return nil, layer.ErrBits
	}
	o = new(MajPool2DLayer)
	o.width = width
	o.height = height
	o.subwidth = subwidth
	o.subheight = subheight
	o.repeat = repeat
	return
}

// MustNew creates a new MajPool2D layer with size, subsize and repeat
func MustNew(width, height, subwidth, subheight, repeat int) *MajPool2DLayer {
	o, err := New(width, height, subwidth, subheight, repeat)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// Lay turns MajPool2D layer into a combiner
func (i *MajPool2DLayer) Lay() layer.Combiner {
	var o MajPool2D
	o.vec = make([]bool, i.Inputs())
	o.width = i.width
	o.height = i.height
	o.subwidth = i.subwidth
	o.subheight = i.subheight
	o.repeat = i.repeat
	return &o
}

// Inputs reports the number of hashtron outputs consumed
func (i *MajPool2DLayer) Inputs() int {
	return i.width * i.height * i.subwidth * i.subheight * i.repeat
}

// Outputs reports the number of distinct features produced
func (i *MajPool2DLayer) Outputs() int {
	return i.width * i.height
}
