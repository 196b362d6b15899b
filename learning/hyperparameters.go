package learning

import "runtime"

import "github.com/klauspost/cpuid/v2"

// HyperParameters configure the hashtron solver. They play the role of the
// optimizer: the trainer hands one to every hashtron it retrains.
type HyperParameters struct {
	Threads int // number of threads for learning, 0 means one per physical core

	Shuffle bool // whether to shuffle the set before each learning attempt
	Seed    bool // seed prng using true rng

	DeadlineMs    int // salts to try per reduction step before giving up the step
	DeadlineRetry int // retry from scratch after this many failed attempts

	// Factor is how hard to try to come up with a smaller solution (default: 1)
	// Usually set equal to Subtractor
	Factor uint32

	// Subtractor is how hard to try to come up with a smaller solution (default: 1)
	// Usually set equal to Factor
	Subtractor uint32

	DisableProgressBar bool // disable progress bar

	// DisableQuaternary makes Training fail instead of storing an unsolved
	// dataset in a quaternary filter
	DisableQuaternary bool
}

// Defaults fills the zero fields with working values
func (h *HyperParameters) Defaults() {
	if h.Threads <= 0 {
		h.Threads = threadsFor(runtime.NumCPU(), cpuid.CPU.PhysicalCores)
	}
	if h.DeadlineMs <= 0 {
		h.DeadlineMs = 1000
	}
	if h.DeadlineRetry <= 0 {
		h.DeadlineRetry = 3
	}
	if h.Factor == 0 {
		h.Factor = 1
	}
	if h.Subtractor == 0 {
		h.Subtractor = 1
	}
}

// threadsFor runs one salt search thread per physical core, within the cpus
// the process may use.
func threadsFor(logical, physical int) int {
	if logical < 1 {
		logical = 1
	}
	if physical > 0 && physical < logical {
		return physical
	}
	return logical
}
