package feedforward

import "bufio"
import "compress/lzw"
import "encoding/json"
import "errors"
import "fmt"
import "io"
import "os"

import "github.com/neurlang/imageclassifier/hashtron"

// ErrWeightsMismatch is returned when stored weights don't fit the network topology
var ErrWeightsMismatch = errors.New("weights don't match network topology")

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (f FeedforwardNetwork) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer as a lzw compressed json array of hashtrons
func (f FeedforwardNetwork) WriteCompressedWeights(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	bw := bufio.NewWriter(lw)

	_, err := bw.WriteString("[\n")
	if err != nil {
		return err
	}
	for i := 0; i < f.Len(); i++ {
		if i != 0 {
			_, err = bw.WriteString(",\n")
			if err != nil {
				return err
			}
		}
		err = f.GetHashtron(i).WriteJson(bw)
		if err != nil {
			return err
		}
	}
	_, err = bw.WriteString("\n]\n")
	if err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	return lw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a lzw file
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.ReadCompressedWeights(file)
}

// ReadCompressedWeights reads model weights from a reader. The network is left
// untouched when the weights don't decode or don't fit.
func (f *FeedforwardNetwork) ReadCompressedWeights(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	var trons []hashtron.Hashtron
	if err := json.NewDecoder(lr).Decode(&trons); err != nil {
		return err
	}
	if len(trons) != f.Len() {
		return fmt.Errorf("%w: %d hashtrons stored, network has %d", ErrWeightsMismatch, len(trons), f.Len())
	}
	for i := range trons {
		if trons[i].Bits() != f.GetHashtron(i).Bits() {
			return fmt.Errorf("%w: hashtron %d has %d bits", ErrWeightsMismatch, i, trons[i].Bits())
		}
	}
	for i := range trons {
		*f.GetHashtron(i) = trons[i]
	}
	return nil
}
