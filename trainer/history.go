package trainer

import "sort"

// Logs maps metric names to their value at the end of an epoch. Validation
// metrics carry a val_ prefix.
type Logs map[string]float64

// Names lists the metric names in lexical order
func (l Logs) Names() []string {
	var o = make([]string, 0, len(l))
	for name := range l {
		o = append(o, name)
	}
	sort.Strings(o)
	return o
}

// History records the epoch logs of a Fit call
type History struct {
	Epoch   []int
	History map[string][]float64
}

func (h *History) append(epoch int, logs Logs) {
	if h.History == nil {
		h.History = make(map[string][]float64)
	}
	h.Epoch = append(h.Epoch, epoch)
	for name, v := range logs {
		h.History[name] = append(h.History[name], v)
	}
}
