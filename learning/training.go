package learning

import "errors"

import "github.com/neurlang/imageclassifier/datasets"
import "github.com/neurlang/imageclassifier/hashtron"
import "github.com/neurlang/quaternary"

// ErrNoSolution is returned when the solver gives up on a dataset
var ErrNoSolution = errors.New("no hashtron program separates the dataset")

// Training learns a hashtron with the given number of output bits answering d.
// When no hashing program separates d, the dataset is stored in a quaternary
// filter instead, which answers every key of d exactly.
func (h *HyperParameters) Training(d datasets.Dataset, bits byte) (*hashtron.Hashtron, error) {
	if len(d) == 0 {
		return nil, ErrNoSolution
	}
	var alphabet = datasets.SplitDataset(d).Alphabet()
	if program := h.Reducing(alphabet); program != nil {
		return hashtron.New(program, bits)
	}
	if h.DisableQuaternary {
		return nil, ErrNoSolution
	}
	return filtered(d, bits)
}

func filtered(d datasets.Dataset, bits byte) (*hashtron.Hashtron, error) {
	return hashtron.NewFiltered(nil, bits, quaternary.Make(map[uint32]bool(d)))
}
