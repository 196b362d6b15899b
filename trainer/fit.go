package trainer

import "context"
import "fmt"
import "math/rand"
import "time"

import "github.com/pkg/errors"
import log "github.com/sirupsen/logrus"

// FitOptions configure a Fit call. Steps <= 0 mean every batch of the source.
type FitOptions struct {
	Epochs          int
	ValidationData  DataSource
	StepsPerEpoch   int
	ValidationSteps int
	Callbacks       []Callback

	// Seed orders the hashtrons to train, the current time when zero
	Seed int64
}

// Fit trains the network. Every step retrains one hashtron on one batch and
// keeps the change unless the batch error grows. Hashtrons are visited in an
// order reshuffled whenever it runs out.
func (m *Model) Fit(ctx context.Context, train DataSource, opts FitOptions) (*History, error) {
	if !m.compiled {
		return nil, ErrNotCompiled
	}
	if train.N() == 0 || train.Len() == 0 {
		return nil, ErrNoData
	}
	epochs := max(opts.Epochs, 1)
	steps := opts.StepsPerEpoch
	if steps <= 0 {
		steps = train.Len()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var rng = rand.New(rand.NewSource(seed))
	var logger = m.logger()
	var trainWorst = NewTrainWorstFunc(&m.Net, m.Optimizer, m.tallyLoss, logger)

	var order []int
	var cursor int
	var localMinimums = make(map[[32]byte]struct{})
	var history = new(History)

	for epoch := 0; epoch < epochs; epoch++ {
		entry := logger.WithField("epoch", fmt.Sprintf("%d/%d", epoch+1, epochs))
		var p Prediction
		var kept int
		for step := 0; step < steps; step++ {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			batch, err := train.Batch(ctx, step%train.Len())
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d step %d", epoch+1, step)
			}
			if cursor == len(order) {
				order, cursor = m.Net.Shuffle(rng, false), 0
			}
			worst := order[cursor]
			cursor++

			before := m.batchError(batch)
			if undo := trainWorst(worst, batch); undo != nil {
				if m.batchError(batch) > before {
					undo()
				} else {
					kept++
				}
			}

			labels := make([]uint16, len(batch))
			predicted := make([]uint16, len(batch))
			m.infer(batch, labels, predicted)
			p.Labels = append(p.Labels, labels...)
			p.Predicted = append(p.Predicted, predicted...)
			entry.WithFields(log.Fields{"step": step + 1, "steps": steps, "hashtron": worst}).Debug("step done")
		}

		logs, err := m.logs(p, "", nil)
		if err != nil {
			return history, err
		}
		if opts.ValidationData != nil {
			vp, err := m.Predict(ctx, opts.ValidationData, opts.ValidationSteps)
			if err != nil {
				return history, errors.Wrap(err, "validation")
			}
			if logs, err = m.logs(vp, "val_", logs); err != nil {
				return history, err
			}
			if _, bad := localMinimums[vp.State]; bad {
				entry.WithField("state", fmt.Sprintf("%x", vp.State)).Warn("validation state repeated, stuck in local minimum")
			}
			localMinimums[vp.State] = struct{}{}
		}

		fields := log.Fields{"changed": kept}
		for name, v := range logs {
			fields[name] = v
		}
		entry.WithFields(fields).Info("epoch end")

		history.append(epoch, logs)
		for _, cb := range opts.Callbacks {
			if err := cb.OnEpochEnd(m, epoch, logs); err != nil {
				return history, errors.Wrap(err, "callback")
			}
		}
		train.OnEpochEnd()
	}
	return history, nil
}

// logs scores p into into, prefixing the metric names
func (m *Model) logs(p Prediction, prefix string, into Logs) (Logs, error) {
	if into == nil {
		into = make(Logs)
	}
	values, err := m.score(p)
	if err != nil {
		return into, err
	}
	for i, name := range m.MetricNames() {
		into[prefix+name] = values[i]
	}
	return into, nil
}
