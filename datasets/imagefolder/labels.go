// Package imagefolder streams labelled images from a directory tree with one
// subdirectory per class
package imagefolder

import "bufio"
import "os"
import "strings"

import "github.com/pkg/errors"

// ReadLabels reads one label per line. Lines are trimmed and blank lines skipped.
func ReadLabels(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open labels")
	}
	defer file.Close()

	var labels []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label == "" {
			continue
		}
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read labels")
	}
	return labels, nil
}
