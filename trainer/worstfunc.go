package trainer

import "runtime"

import log "github.com/sirupsen/logrus"

import "github.com/neurlang/imageclassifier/datasets"
import "github.com/neurlang/imageclassifier/learning"
import "github.com/neurlang/imageclassifier/net/feedforward"
import "github.com/neurlang/imageclassifier/parallel"

// NewTrainWorstFunc returns a function retraining hashtron worst on batch. It
// returns an undo func restoring the previous hashtron, or nil when nothing
// changed.
func NewTrainWorstFunc(net *feedforward.FeedforwardNetwork, opt learning.HyperParameters,
	loss func(actual, expected uint16) uint32, logger *log.Entry) func(worst int, batch []feedforward.FeedforwardNetworkInOutput) (undo func()) {
	return func(worst int, batch []feedforward.FeedforwardNetworkInOutput) (undo func()) {
		ptr := net.GetHashtron(worst)
		if ptr == nil || len(batch) == 0 {
			return nil
		}

		var tally datasets.Tally
		tally.Init()
		parallel.ForEach(len(batch), opt.Threads, func(i int) {
			net.Tally(batch[i], worst, &tally, loss)
		})

		if !tally.GetImprovementPossible() {
			return nil
		}

		logger.WithFields(log.Fields{"hashtron": worst, "job": tally.Len()}).Debug("training hashtron")

		dset := tally.Dataset()
		tally.Free()

		htron, err := opt.Training(dset, ptr.Bits())
		if err != nil {
			logger.WithError(err).WithField("hashtron", worst).Debug("hashtron kept")
			return nil
		}
		backup := *ptr
		*ptr = *htron

		runtime.GC()

		return func() {
			*ptr = backup
		}
	}
}
