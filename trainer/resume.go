package trainer

import "github.com/pkg/errors"

// Resume loads saved weights into the model network
func Resume(m *Model, path string) error {
	return errors.Wrapf(m.Net.ReadCompressedWeightsFromFile(path), "resume from %s", path)
}
