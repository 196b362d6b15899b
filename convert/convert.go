// Package convert exports trained models as standalone inference artifacts
package convert

import "context"
import "os"
import "path/filepath"
import "strings"

import "github.com/pkg/errors"
import log "github.com/sirupsen/logrus"

import "github.com/neurlang/imageclassifier/learning"
import "github.com/neurlang/imageclassifier/metrics"
import "github.com/neurlang/imageclassifier/model"
import "github.com/neurlang/imageclassifier/trainer"

const (
	// DefaultDir receives the exported artifacts
	DefaultDir = "./lite-models"

	// PlainName is the unquantized artifact, lzw compressed json weights
	PlainName = "model.json.lzw"

	// QuantName is the quantized artifact, zlib compressed varint weights
	QuantName = "model_quant.hnq"
)

// Export writes the unquantized and the quantized artifact of m into dir,
// creating dir when missing.
func Export(m *trainer.Model, dir string) (plain, quant string, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "export")
	}
	plain = filepath.Join(dir, PlainName)
	if err = m.Net.WriteCompressedWeightsToFile(plain); err != nil {
		return "", "", errors.Wrapf(err, "export %s", plain)
	}
	quant = filepath.Join(dir, QuantName)
	if err = m.Net.WriteQuantizedWeightsToFile(quant); err != nil {
		return "", "", errors.Wrapf(err, "export %s", quant)
	}
	for _, path := range []string{plain, quant} {
		if info, err := os.Stat(path); err == nil {
			log.WithFields(log.Fields{"path": path, "bytes": info.Size()}).Info("exported model")
		}
	}
	return plain, quant, nil
}

// Load builds a model of the given shape and loads an exported artifact into it
func Load(path string, classes int, arch model.Architecture) (*trainer.Model, error) {
	m, err := model.New(classes, arch)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, filepath.Ext(QuantName)) {
		err = m.Net.ReadQuantizedWeightsFromFile(path)
	} else {
		err = m.Net.ReadCompressedWeightsFromFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return m, nil
}

// EvaluateArtifact reloads an exported artifact into a fresh network and
// returns its accuracy on every batch of data.
func EvaluateArtifact(ctx context.Context, path string, classes int, arch model.Architecture, data trainer.DataSource) (float64, error) {
	m, err := Load(path, classes, arch)
	if err != nil {
		return 0, err
	}
	if err = m.Compile(learning.HyperParameters{}, trainer.CategoricalCrossentropy, metrics.Accuracy); err != nil {
		return 0, err
	}
	values, err := m.Evaluate(ctx, data, 0)
	if err != nil {
		return 0, errors.Wrapf(err, "evaluate %s", path)
	}
	return values[1], nil
}
