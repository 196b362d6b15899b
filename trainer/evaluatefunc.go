package trainer

import "context"
import "sync/atomic"

import "github.com/pkg/errors"

import "github.com/neurlang/imageclassifier/metrics"
import "github.com/neurlang/imageclassifier/net/feedforward"
import "github.com/neurlang/imageclassifier/parallel"

// Prediction holds the labels and predicted class codes of an evaluation pass
type Prediction struct {
	Labels    []uint16
	Predicted []uint16

	// State digests the predictions, equal states mean equal answers
	State [32]byte
}

// infer predicts every sample of batch in parallel
func (m *Model) infer(batch []feedforward.FeedforwardNetworkInOutput, labels, predicted []uint16) {
	parallel.ForEach(len(batch), m.Optimizer.Threads, func(i int) {
		labels[i] = batch[i].Output()
		predicted[i] = m.Net.Infer(batch[i])
	})
}

// batchError sums the loss of the network over batch
func (m *Model) batchError(batch []feedforward.FeedforwardNetworkInOutput) uint64 {
	var sum atomic.Uint64
	parallel.ForEach(len(batch), m.Optimizer.Threads, func(i int) {
		sum.Add(uint64(m.tallyLoss(m.Net.Infer(batch[i]), batch[i].Output())))
	})
	return sum.Load()
}

// Predict runs the network over the first steps batches of data, all batches when steps <= 0.
func (m *Model) Predict(ctx context.Context, data DataSource, steps int) (p Prediction, err error) {
	if steps <= 0 || steps > data.Len() {
		steps = data.Len()
	}
	for i := 0; i < steps; i++ {
		batch, err := data.Batch(ctx, i)
		if err != nil {
			return p, errors.Wrapf(err, "batch %d", i)
		}
		labels := make([]uint16, len(batch))
		predicted := make([]uint16, len(batch))
		m.infer(batch, labels, predicted)
		p.Labels = append(p.Labels, labels...)
		p.Predicted = append(p.Predicted, predicted...)
	}
	if len(p.Labels) == 0 {
		return p, ErrNoData
	}
	h := parallel.NewUint16Hasher(len(p.Predicted))
	parallel.ForEach(len(p.Predicted), m.Optimizer.Threads, func(i int) {
		h.MustPutUint16(i, p.Predicted[i])
	})
	p.State = h.Sum()
	return p, nil
}

// Evaluate returns the loss and the compiled metrics over the first steps
// batches of data, all batches when steps <= 0.
func (m *Model) Evaluate(ctx context.Context, data DataSource, steps int) ([]float64, error) {
	if !m.compiled {
		return nil, ErrNotCompiled
	}
	p, err := m.Predict(ctx, data, steps)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}
	return m.score(p)
}

func (m *Model) score(p Prediction) ([]float64, error) {
	values, err := metrics.Compute(m.MetricNames(), m.Classes, p.Labels, p.Predicted)
	return values, errors.Wrap(err, "metrics")
}
