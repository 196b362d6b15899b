package datasets

import "sync"

// Tally is used to count votes on dataset features and return the majority votes
type Tally struct {
	// these are votes in case when the feature caused correct overall result
	// true value is added as +1, false value is voted as -1
	// if the tally is positive we map the feature to true, false if negative
	correct map[uint32]int64

	// these are votes in case when the feature caused better result
	// true value is added as +1, false value is voted as -1
	// if the tally is positive we map the feature to true, false if negative
	improve map[uint32]int64

	mut sync.Mutex

	// improvementPossible reports whether an improvement is possible
	improvementPossible bool
}

// Init initializes the tally dataset structure
func (t *Tally) Init() {
	t.correct = make(map[uint32]int64)
	t.improve = make(map[uint32]int64)
	t.improvementPossible = false
}

// Free frees the memory occupied by tally dataset structure
func (t *Tally) Free() {
	t.correct = nil
	t.improve = nil
}

// GetImprovementPossible reports whether some vote asked for a flipped answer
func (t *Tally) GetImprovementPossible() bool {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.improvementPossible
}

// Len estimates the size of tally
func (t *Tally) Len() (o int) {
	t.mut.Lock()
	o = len(t.correct) + len(t.improve)
	t.mut.Unlock()
	return
}

// AddToImprove votes for feature which improved the overall result
func (t *Tally) AddToImprove(feature uint32, vote int8) {
	if vote == 0 {
		return
	}
	t.mut.Lock()
	t.improve[feature] += int64(vote)
	if t.improve[feature] == 0 {
		delete(t.improve, feature)
	}
	t.mut.Unlock()
}

// AddToCorrect votes for feature which caused the overall result to be correct
func (t *Tally) AddToCorrect(feature uint32, vote int8, improvement bool) {
	if vote == 0 {
		return
	}
	t.mut.Lock()
	t.correct[feature] += int64(vote)
	if t.correct[feature] == 0 {
		delete(t.correct, feature)
	}
	if improvement {
		t.improvementPossible = true
	}
	t.mut.Unlock()
}

// Dataset resolves the votes. Features that make the result correct override
// features that merely improve it.
func (t *Tally) Dataset() Dataset {
	t.mut.Lock()
	defer t.mut.Unlock()
	var sett Dataset
	sett.Init()
	for value, rating := range t.improve {
		if rating != 0 {
			sett[value] = rating > 0
		}
	}
	for value, rating := range t.correct {
		if rating != 0 {
			sett[value] = rating > 0
		}
	}
	return sett
}
