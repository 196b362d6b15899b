package feedforward

import "bufio"
import "bytes"
import "compress/zlib"
import "encoding/binary"
import "errors"
import "fmt"
import "io"
import "os"

import "github.com/neurlang/imageclassifier/hashtron"

// quantizedMagic starts every quantized weights stream
var quantizedMagic = []byte("HNQ1")

// ErrQuantizedFormat is returned for streams not produced by WriteQuantizedWeights
var ErrQuantizedFormat = errors.New("not a quantized weights stream")

// WriteQuantizedWeightsToFile writes quantized model weights to a file
func (f FeedforwardNetwork) WriteQuantizedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteQuantizedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteQuantizedWeights writes the magic, then per hashtron layer its premodulo
// and hashtron count followed by the varint encoded hashtrons, all zlib compressed.
func (f FeedforwardNetwork) WriteQuantizedWeights(w io.Writer) error {
	zw, err := zlib.NewWriterLevel(w, zlib.BestCompression)
	if err != nil {
		return err
	}
	var buf = append([]byte(nil), quantizedMagic...)
	buf = binary.AppendUvarint(buf, uint64(f.hashtronLayers()))
	if _, err = zw.Write(buf); err != nil {
		return err
	}
	for l := range f.layers {
		if f.combiners[l] != nil {
			continue
		}
		buf = binary.AppendUvarint(buf[:0], uint64(f.premodulo[l]))
		buf = binary.AppendUvarint(buf, uint64(len(f.layers[l])))
		if _, err = zw.Write(buf); err != nil {
			return err
		}
		for i := range f.layers[l] {
			if err = f.layers[l][i].WriteQuantized(zw); err != nil {
				return err
			}
		}
	}
	return zw.Close()
}

// ReadQuantizedWeightsFromFile reads quantized model weights from a file
func (f *FeedforwardNetwork) ReadQuantizedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.ReadQuantizedWeights(file)
}

// ReadQuantizedWeights reads weights written by WriteQuantizedWeights. The
// network is left untouched on error.
func (f *FeedforwardNetwork) ReadQuantizedWeights(r io.Reader) error {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuantizedFormat, err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	var magic = make([]byte, len(quantizedMagic))
	if _, err = io.ReadFull(br, magic); err != nil || !bytes.Equal(magic, quantizedMagic) {
		return ErrQuantizedFormat
	}
	layers, err := binary.ReadUvarint(br)
	if err != nil {
		return err
	}
	if layers != uint64(f.hashtronLayers()) {
		return fmt.Errorf("%w: %d layers stored, network has %d", ErrWeightsMismatch, layers, f.hashtronLayers())
	}
	var loaded = make([][]hashtron.Hashtron, len(f.layers))
	for l := range f.layers {
		if f.combiners[l] != nil {
			continue
		}
		premodulo, err := binary.ReadUvarint(br)
		if err != nil {
			return err
		}
		count, err := binary.ReadUvarint(br)
		if err != nil {
			return err
		}
		if premodulo != uint64(f.premodulo[l]) || count != uint64(len(f.layers[l])) {
			return fmt.Errorf("%w: layer %d", ErrWeightsMismatch, l)
		}
		loaded[l] = make([]hashtron.Hashtron, count)
		for i := range loaded[l] {
			if err = loaded[l][i].ReadQuantized(br); err != nil {
				return err
			}
			if loaded[l][i].Bits() != f.layers[l][i].Bits() {
				return fmt.Errorf("%w: layer %d hashtron %d bits", ErrWeightsMismatch, l, i)
			}
		}
	}
	for l := range loaded {
		copy(f.layers[l], loaded[l])
	}
	return nil
}

// hashtronLayers counts the layers made of hashtrons
func (f FeedforwardNetwork) hashtronLayers() (n int) {
	for l := range f.layers {
		if f.combiners[l] == nil {
			n++
		}
	}
	return
}
