package hashtron

import "encoding/json"
import "errors"
import "io"

type hashtronJson struct {
	Bits    byte        `json:"bits"`
	Program [][2]uint32 `json:"program"`

	Quaternary []byte `json:"quaternary,omitempty"`
}

// ErrEmptyProgram is returned when decoding a hashtron without hashing commands
// and without a quaternary filter
var ErrEmptyProgram = errors.New("hashtron program is empty")

// MarshalJSON serializes the hashtron as {"bits":B,"program":[[salt,modulo],...]}.
// A quaternary filter is stored base64 encoded under "quaternary".
func (h Hashtron) MarshalJSON() ([]byte, error) {
	var program = h.program
	if program == nil {
		program = [][2]uint32{}
	}
	return json.Marshal(hashtronJson{Bits: h.bits, Program: program, Quaternary: h.quaternary})
}

// UnmarshalJSON deserializes the hashtron
func (h *Hashtron) UnmarshalJSON(data []byte) error {
	var v hashtronJson
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v.Program) == 0 && len(v.Quaternary) == 0 {
		return ErrEmptyProgram
	}
	if v.Bits == 0 {
		v.Bits = 1
	}
	h.bits = v.Bits
	h.program = v.Program
	h.quaternary = v.Quaternary
	return nil
}

// WriteJson writes the hashtron as json to w
func (h Hashtron) WriteJson(w io.Writer) error {
	buf, err := h.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadJson reads one json hashtron from r
func (h *Hashtron) ReadJson(r io.Reader) error {
	return json.NewDecoder(r).Decode(h)
}
