package spawn

import (
	"io"

	"github.com/geophile/osh/internal/wire"
)

// ObjectProvider feeds a sequence of objects into a subprocess's stdin,
// wire-encoded one per line. inputs is drained in full before stdin is
// closed (by Spawn, once run returns).
type ObjectProvider struct {
	inputs []interface{}

	enc     *wire.Encoder
	spawned *Spawn
}

// NewObjectProvider returns an InputProvider that writes each of inputs,
// in order, as a wire-encoded value.
func NewObjectProvider(inputs []interface{}) *ObjectProvider {
	return &ObjectProvider{inputs: inputs}
}

func (p *ObjectProvider) initialize(w io.WriteCloser, s *Spawn) {
	p.enc = wire.NewEncoder(w)
	p.spawned = s
}

func (p *ObjectProvider) run() error {
	for _, input := range p.inputs {
		if err := p.enc.EncodeValue(input); err != nil {
			return err
		}
	}
	return nil
}

// sendKill encodes the signal number as a final value so the remote side
// can notice it and shut itself down; osh's Python original relies on the
// same convention (a plain int in place of a pipeline/tuple value).
func (p *ObjectProvider) sendKill(signal int) error {
	if p.enc == nil {
		return nil
	}
	err := p.enc.EncodeValue(signal)
	p.spawned.closeInputStream()
	return err
}
