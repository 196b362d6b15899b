// Package metrics scores class predictions the way the training run reports them
package metrics

import "errors"
import "fmt"
import "math"
import "sort"

// Metric names accepted by Compute.
const (
	Loss      = "loss"
	Accuracy  = "accuracy"
	Recall    = "recall"
	Precision = "precision"
	F1        = "f1_metric"
	AUC       = "auc"
)

// Epsilon is the probability mass a prediction leaves to the other classes
const Epsilon = 1e-7

// threshold turns a score into a positive prediction
const threshold = 0.5

// ErrUnknownMetric is returned for a metric name Compute doesn't know
var ErrUnknownMetric = errors.New("unknown metric")

// ErrLabelRange is returned when a label is not below the number of classes
var ErrLabelRange = errors.New("label out of range")

// Known reports whether name is a metric Compute can calculate
func Known(name string) bool {
	switch name {
	case Loss, Accuracy, Recall, Precision, F1, AUC:
		return true
	}
	return false
}

// Scores turns a predicted class code into per class scores. A code outside
// the class range scores every class uniformly.
func Scores(classes int, predicted uint16) []float64 {
	var o = make([]float64, classes)
	if classes <= 0 {
		return o
	}
	if int(predicted) >= classes || classes == 1 {
		for i := range o {
			o[i] = 1 / float64(classes)
		}
		return o
	}
	for i := range o {
		o[i] = Epsilon / float64(classes-1)
	}
	o[predicted] = 1 - Epsilon
	return o
}

// Compute calculates the named metrics of predicted against labels, in the
// order of names.
func Compute(names []string, classes int, labels, predicted []uint16) ([]float64, error) {
	if len(labels) != len(predicted) {
		return nil, fmt.Errorf("%d labels for %d predictions", len(labels), len(predicted))
	}
	for _, name := range names {
		if !Known(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
		}
	}
	for _, label := range labels {
		if int(label) >= classes {
			return nil, fmt.Errorf("%w: %d of %d classes", ErrLabelRange, label, classes)
		}
	}
	var c = newConfusion(classes, labels, predicted)
	var o = make([]float64, len(names))
	for i, name := range names {
		switch name {
		case Loss:
			o[i] = c.loss
		case Accuracy:
			o[i] = c.accuracy()
		case Recall:
			o[i] = c.recall()
		case Precision:
			o[i] = c.precision()
		case F1:
			p, r := c.precision(), c.recall()
			o[i] = 2 * p * r / (p + r + Epsilon)
		case AUC:
			o[i] = rocAUC(classes, labels, predicted)
		}
	}
	return o, nil
}

// confusion holds the micro averaged counts over one-hot labels
type confusion struct {
	n, tp, fp int
	loss      float64
}

func newConfusion(classes int, labels, predicted []uint16) (c confusion) {
	c.n = len(labels)
	for i := range labels {
		scores := Scores(classes, predicted[i])
		c.loss -= math.Log(scores[labels[i]])
		for k, s := range scores {
			if s <= threshold {
				continue
			}
			if k == int(labels[i]) {
				c.tp++
			} else {
				c.fp++
			}
		}
	}
	if c.n > 0 {
		c.loss /= float64(c.n)
	}
	return
}

func divide(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func (c confusion) accuracy() float64 {
	return divide(c.tp, c.n)
}

func (c confusion) recall() float64 {
	return divide(c.tp, c.n)
}

func (c confusion) precision() float64 {
	return divide(c.tp, c.tp+c.fp)
}

// rocAUC computes the exact area under the ROC curve of the flattened one-hot
// labels and scores. Tied scores share their average rank.
func rocAUC(classes int, labels, predicted []uint16) float64 {
	type point struct {
		score    float64
		positive bool
	}
	var points = make([]point, 0, len(labels)*classes)
	for i := range labels {
		for k, s := range Scores(classes, predicted[i]) {
			points = append(points, point{s, k == int(labels[i])})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].score < points[j].score })

	var positives, negatives int
	var rankSum float64
	for i := 0; i < len(points); {
		j := i
		for j < len(points) && points[j].score == points[i].score {
			j++
		}
		// ranks i+1..j averaged
		rank := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			if points[k].positive {
				positives++
				rankSum += rank
			} else {
				negatives++
			}
		}
		i = j
	}
	if positives == 0 || negatives == 0 {
		return 0
	}
	p := float64(positives)
	return (rankSum - p*(p+1)/2) / (p * float64(negatives))
}
