// Package results appends evaluation metrics of a training run to a CSV file
package results

import "encoding/csv"
import "os"
import "strconv"
import "time"

import "github.com/pkg/errors"

// DefaultPath is where a run records its results
const DefaultPath = "./results.csv"

// TimeLayout formats the timestamp column
const TimeLayout = "2006-01-02 15:04:05"

// Header names the columns of a results file
var Header = []string{"Timestamp", "Loss", "Accuracy", "Recall", "Precision", "F1_metric", "AUC", "Epochs", "Batch_size"}

// Logger writes result rows stamped by Now
type Logger struct {
	Path string
	Now  func() time.Time
}

// Write appends one row to the results file at path, creating it with a
// header row first when it does not exist yet.
func Write(path string, results []float64, epochs, batchSize int) error {
	return Logger{Path: path}.Write(results, epochs, batchSize)
}

// Write appends one row: the timestamp, every metric in order, epochs and batch size.
func (l Logger) Write(results []float64, epochs, batchSize int) error {
	var now = time.Now
	if l.Now != nil {
		now = l.Now
	}
	var path = l.Path
	if path == "" {
		path = DefaultPath
	}

	_, err := os.Stat(path)
	fresh := os.IsNotExist(err)
	if err != nil && !fresh {
		return errors.Wrapf(err, "stat results file %s", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open results file %s", path)
	}

	w := csv.NewWriter(file)
	if fresh {
		err = w.Write(Header)
	}
	if err == nil {
		err = w.Write(Row(now(), results, epochs, batchSize))
	}
	if err == nil {
		w.Flush()
		err = w.Error()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "write results file %s", path)
}

// Row formats one results row without touching results.
func Row(at time.Time, results []float64, epochs, batchSize int) []string {
	var row = make([]string, 0, len(results)+3)
	row = append(row, at.Format(TimeLayout))
	for _, v := range results {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	row = append(row, strconv.Itoa(epochs), strconv.Itoa(batchSize))
	return row
}
