// Package model builds the image classification network
package model

import "github.com/pkg/errors"

import "github.com/neurlang/imageclassifier/layer/full"
import "github.com/neurlang/imageclassifier/layer/majpool2d"
import "github.com/neurlang/imageclassifier/trainer"

// ErrTooFewClasses is returned for fewer than two classes
var ErrTooFewClasses = errors.New("at least two classes are needed")

// Architecture holds the tunable shape of the network
type Architecture struct {
	// Repeat is the number of hashtrons voting on every pooled cell
	Repeat int

	// Premodulo reduces the image features before the first layer, 0 disables it
	Premodulo uint32
}

// DefaultArchitecture is the architecture used for training runs
var DefaultArchitecture = Architecture{Repeat: 3, Premodulo: 4096}

// CodeBits returns the bits needed to encode class indexes below classes
func CodeBits(classes int) int {
	bits := 1
	for 1<<bits < classes {
		bits++
	}
	return bits
}

// New builds an untrained model: 64 image patches pooled 2x2 into 16 blocks,
// the blocks pooled into one 4x4 map and C hashtrons spelling out the class
// code in binary.
func New(classes int, arch Architecture) (*trainer.Model, error) {
	if classes < 2 {
		return nil, errors.Wrapf(ErrTooFewClasses, "%d classes", classes)
	}
	if arch.Repeat <= 0 {
		arch.Repeat = DefaultArchitecture.Repeat
	}
	code := CodeBits(classes)
	if code > 16 {
		return nil, errors.Errorf("%d classes don't fit a 16 bit code", classes)
	}

	m := &trainer.Model{Classes: classes}
	m.Net.NewLayerP(64*arch.Repeat, 0, arch.Premodulo)
	m.Net.NewCombiner(majpool2d.MustNew(4, 4, 2, 2, arch.Repeat))
	m.Net.NewLayer(16*arch.Repeat, 0)
	m.Net.NewCombiner(majpool2d.MustNew(1, 1, 4, 4, arch.Repeat))
	m.Net.NewLayer(code, 0)
	m.Net.NewCombiner(full.MustNew(code, 1, 1))
	if err := m.Net.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewWithWeights builds a model and loads trained weights from path
func NewWithWeights(classes int, arch Architecture, path string) (*trainer.Model, error) {
	m, err := New(classes, arch)
	if err != nil {
		return nil, err
	}
	if err := trainer.Resume(m, path); err != nil {
		return nil, err
	}
	return m, nil
}
