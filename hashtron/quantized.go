package hashtron

import "encoding/binary"
import "errors"
import "io"

// ErrQuantizedOverflow is returned when a quantized value does not fit its field
var ErrQuantizedOverflow = errors.New("quantized hashtron value overflows")

// maxQuantizedProgram bounds the program length accepted from a quantized stream
const maxQuantizedProgram = 1 << 20

// maxQuantizedFilter bounds the quaternary filter size accepted from a quantized stream
const maxQuantizedFilter = 1 << 28

// WriteQuantized writes the hashtron using variable-width integers: bits, program
// length, then salt and modulo of every command, then the quaternary filter
// length and its raw bytes. Small moduli take one or two bytes.
func (h Hashtron) WriteQuantized(w io.Writer) error {
	var buf = make([]byte, 0, 2*binary.MaxVarintLen32*(2+len(h.program))+len(h.quaternary))
	buf = binary.AppendUvarint(buf, uint64(h.bits))
	buf = binary.AppendUvarint(buf, uint64(len(h.program)))
	for _, cmd := range h.program {
		buf = binary.AppendUvarint(buf, uint64(cmd[0]))
		buf = binary.AppendUvarint(buf, uint64(cmd[1]))
	}
	buf = binary.AppendUvarint(buf, uint64(len(h.quaternary)))
	buf = append(buf, h.quaternary...)
	_, err := w.Write(buf)
	return err
}

// ReadQuantized reads a hashtron written by WriteQuantized
func (h *Hashtron) ReadQuantized(r io.ByteReader) error {
	bits, err := binary.ReadUvarint(r)
	if err != nil {
		return err
	}
	if bits > 16 {
		return ErrQuantizedOverflow
	}
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return err
	}
	if length > maxQuantizedProgram {
		return ErrQuantizedOverflow
	}
	var program = make([][2]uint32, length)
	for i := range program {
		for j := 0; j < 2; j++ {
			v, err := readUvarint(r)
			if err != nil {
				return err
			}
			if v > 0xffffffff {
				return ErrQuantizedOverflow
			}
			program[i][j] = uint32(v)
		}
	}
	filterLen, err := readUvarint(r)
	if err != nil {
		return err
	}
	if filterLen > maxQuantizedFilter {
		return ErrQuantizedOverflow
	}
	if length == 0 && filterLen == 0 {
		return ErrEmptyProgram
	}
	var filter []byte
	if filterLen > 0 {
		filter = make([]byte, filterLen)
		for i := range filter {
			if filter[i], err = r.ReadByte(); err != nil {
				if err == io.EOF {
					return io.ErrUnexpectedEOF
				}
				return err
			}
		}
	}
	if bits == 0 {
		bits = 1
	}
	h.bits = byte(bits)
	h.program = program
	h.quaternary = filter
	return nil
}

// readUvarint reads a uvarint that must be present
func readUvarint(r io.ByteReader) (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	return v, err
}
