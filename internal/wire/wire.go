package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/geophile/osh/internal/errs"
)

type frameKind string

const (
	kindValue     frameKind = "value"
	kindException frameKind = "exception"
)

type frame struct {
	Kind      frameKind                  `json:"kind"`
	Value     interface{}                `json:"value,omitempty"`
	Exception *errs.PickleableException  `json:"exception,omitempty"`
}

// Encoder writes a sequence of objects to a stream, one JSON frame per
// line.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w for frame-at-a-time writes.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// EncodeValue writes v as a plain value frame.
func (e *Encoder) EncodeValue(v interface{}) error {
	return e.encode(frame{Kind: kindValue, Value: v})
}

// EncodeException writes exc as an exception envelope frame.
func (e *Encoder) EncodeException(exc *errs.PickleableException) error {
	return e.encode(frame{Kind: kindException, Exception: exc})
}

func (e *Encoder) encode(f frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return fmt.Errorf("wire: encode: %w", err)
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decoder reads a sequence of objects from a stream written by an
// Encoder.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps r for frame-at-a-time reads.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next frame, returning either a plain value or an
// *errs.PickleableException. It returns io.EOF once the stream is
// exhausted.
func (d *Decoder) Decode() (interface{}, error) {
	line, err := d.r.ReadBytes('\n')
	if len(line) == 0 {
		if err != nil {
			return nil, err
		}
	}
	line = bytes.TrimRight(line, "\n")
	if len(line) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, nil
	}
	var f frame
	if unmarshalErr := sonic.Unmarshal(line, &f); unmarshalErr != nil {
		return nil, fmt.Errorf("wire: decode: %w", unmarshalErr)
	}
	if f.Kind == kindException {
		return f.Exception, nil
	}
	return f.Value, nil
}
