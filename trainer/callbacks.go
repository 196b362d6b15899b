package trainer

import "os"
import "path/filepath"
import "strings"
import "time"

import "github.com/pkg/errors"
import log "github.com/sirupsen/logrus"

// Callback is notified at the end of every training epoch. An error stops Fit.
type Callback interface {
	OnEpochEnd(m *Model, epoch int, logs Logs) error
}

// CallbackFunc adapts a function to Callback
type CallbackFunc func(m *Model, epoch int, logs Logs) error

// OnEpochEnd calls f
func (f CallbackFunc) OnEpochEnd(m *Model, epoch int, logs Logs) error {
	return f(m, epoch, logs)
}

// ModelCheckpoint saves the network weights when the monitored metric improves
type ModelCheckpoint struct {
	Path    string
	Monitor string

	// Mode is "max", "min" or "auto", auto maximizing accuracy like metrics
	Mode string

	// SaveBestOnly skips saving epochs that didn't improve
	SaveBestOnly bool
	Verbose      int

	best float64
	seen bool
}

func (c *ModelCheckpoint) maximize() bool {
	switch c.Mode {
	case "max":
		return true
	case "min":
		return false
	}
	for _, part := range []string{"acc", "auc", "precision", "recall", "f1"} {
		if strings.Contains(c.Monitor, part) {
			return true
		}
	}
	return false
}

// OnEpochEnd saves the weights for an improved epoch. The first epoch seen always improves.
func (c *ModelCheckpoint) OnEpochEnd(m *Model, epoch int, logs Logs) error {
	entry := m.logger().WithFields(log.Fields{"epoch": epoch + 1, "monitor": c.Monitor})
	value, ok := logs[c.Monitor]
	if !ok {
		entry.Warn("monitored metric not available, skipping checkpoint")
		return nil
	}
	improved := !c.seen || (c.maximize() && value > c.best) || (!c.maximize() && value < c.best)
	if !improved {
		if c.Verbose > 0 {
			entry.WithField("best", c.best).Info("did not improve")
		}
		if c.SaveBestOnly {
			return nil
		}
	}
	if c.Verbose > 0 {
		entry.WithFields(log.Fields{"from": c.best, "to": value, "path": c.Path}).Info("saving model")
	}
	if improved {
		c.best, c.seen = value, true
	}
	return errors.Wrap(m.Net.WriteCompressedWeightsToFile(c.Path), "checkpoint")
}

// Best returns the best monitored value so far
func (c *ModelCheckpoint) Best() (float64, bool) {
	return c.best, c.seen
}

// ScalarsTimeLayout names a scalar log directory after the run start
const ScalarsTimeLayout = "20060102-150405"

// Scalars writes every epoch metric as a json line event into Dir/events.jsonl
type Scalars struct {
	Dir   string
	RunID string

	file   *os.File
	logger *log.Logger
}

// NewScalars creates a Scalars logging under root/<start time>
func NewScalars(root, runID string, start time.Time) *Scalars {
	return &Scalars{Dir: filepath.Join(root, start.Format(ScalarsTimeLayout)), RunID: runID}
}

func (s *Scalars) open() error {
	if s.logger != nil {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(err, "scalars")
	}
	file, err := os.OpenFile(filepath.Join(s.Dir, "events.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "scalars")
	}
	s.file = file
	s.logger = log.New()
	s.logger.SetOutput(file)
	s.logger.SetFormatter(&log.JSONFormatter{})
	return nil
}

// OnEpochEnd writes one event per metric
func (s *Scalars) OnEpochEnd(m *Model, epoch int, logs Logs) error {
	if err := s.open(); err != nil {
		return err
	}
	for _, name := range logs.Names() {
		s.logger.WithFields(log.Fields{
			"run":   s.RunID,
			"epoch": epoch,
			"tag":   "epoch_" + name,
			"value": logs[name],
		}).Info("scalar")
	}
	return nil
}

// Close closes the event file
func (s *Scalars) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file, s.logger = nil, nil
	return err
}
