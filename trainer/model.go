package trainer

import "github.com/pkg/errors"
import log "github.com/sirupsen/logrus"

import "github.com/neurlang/imageclassifier/learning"
import "github.com/neurlang/imageclassifier/metrics"
import "github.com/neurlang/imageclassifier/net/feedforward"

// CategoricalCrossentropy is the only loss a Model compiles with
const CategoricalCrossentropy = "categorical_crossentropy"

var (
	// ErrUnknownLoss is returned by Compile for an unsupported loss
	ErrUnknownLoss = errors.New("unknown loss")

	// ErrUnknownMetric is returned by Compile for an unsupported metric
	ErrUnknownMetric = metrics.ErrUnknownMetric

	// ErrNotCompiled is returned when fitting or evaluating before Compile
	ErrNotCompiled = errors.New("model is not compiled")

	// ErrNoData is returned for a data source without samples
	ErrNoData = errors.New("data source is empty")
)

// Model is a classification network with its training configuration
type Model struct {
	Net     feedforward.FeedforwardNetwork
	Classes int

	Optimizer learning.HyperParameters
	Loss      string
	Metrics   []string

	// Logger receives progress entries, the standard logger when nil
	Logger *log.Entry

	compiled bool
}

// Compile configures the optimizer, the loss and the metrics reported after the loss.
func (m *Model) Compile(opt learning.HyperParameters, loss string, names ...string) error {
	if loss != CategoricalCrossentropy {
		return errors.Wrap(ErrUnknownLoss, loss)
	}
	for _, name := range names {
		if name == metrics.Loss || !metrics.Known(name) {
			return errors.Wrap(ErrUnknownMetric, name)
		}
	}
	if err := m.Net.Validate(); err != nil {
		return errors.Wrap(err, "compile")
	}
	opt.Defaults()
	m.Optimizer = opt
	m.Loss = loss
	m.Metrics = append([]string(nil), names...)
	m.compiled = true
	return nil
}

// MetricNames lists the values Evaluate returns: the loss, then the metrics
func (m *Model) MetricNames() []string {
	return append([]string{metrics.Loss}, m.Metrics...)
}

func (m *Model) logger() *log.Entry {
	if m.Logger != nil {
		return m.Logger
	}
	return log.NewEntry(log.StandardLogger())
}

// tallyLoss compares class codes during tallying, zero meaning correct
func (m *Model) tallyLoss(actual, expected uint16) uint32 {
	return feedforward.HammingLoss(actual, expected)
}
