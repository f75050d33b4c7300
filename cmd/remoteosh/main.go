// Command remoteosh is the binary a Remote operator's ssh dispatch runs
// on a cluster host: it reads a Request (verbosity, CLI tokens, and the
// dispatching host descriptor) off stdin, reparses and runs the
// sub-pipeline it describes with that host as its own thread state, and
// streams each output tuple (or a pickleable exception envelope) back
// over stdout using the same wire protocol the parent used to send it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/geophile/osh/internal/cliparser"
	"github.com/geophile/osh/internal/errs"
	"github.com/geophile/osh/internal/logging"
	"github.com/geophile/osh/internal/pipeline"
	"github.com/geophile/osh/internal/remote"
	"github.com/geophile/osh/internal/spawn"
	"github.com/geophile/osh/internal/wire"
)

func main() {
	logging.SetDefault(logging.NewDefault())
	defer logging.Default().Sync()

	dec := wire.NewDecoder(os.Stdin)
	enc := wire.NewEncoder(os.Stdout)

	request, err := readRequest(dec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "remoteosh:", err)
		os.Exit(1)
	}
	pipeline.Verbosity = request.Verbosity

	p, err := cliparser.Parse(request.Pipeline)
	if err != nil {
		fmt.Fprintln(os.Stderr, "remoteosh:", err)
		os.Exit(1)
	}
	p.SetThreadState(request.Host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchForKillSignal(dec, cancel)

	errs.SetExceptionHandler(func(err error, op fmt.Stringer, input interface{}, worker string) {
		exc := errs.NewPickleableException(op.String(), input, err)
		if encErr := enc.EncodeException(exc); encErr != nil {
			fmt.Fprintln(os.Stderr, "remoteosh:", encErr)
		}
	})

	cmd := pipeline.NewCommand(p, spawn.KillAll)
	cmd.SetReceiver(wireReceiver{enc: enc})
	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// readRequest decodes the first frame of the stream, which a wire.Decoder
// hands back as a generic map since a remote.Request is not known to the
// wire package; sonic round-trips that map into the concrete struct.
func readRequest(dec *wire.Decoder) (remote.Request, error) {
	var request remote.Request
	value, err := dec.Decode()
	if err != nil {
		return request, fmt.Errorf("reading request: %w", err)
	}
	raw, err := sonic.Marshal(value)
	if err != nil {
		return request, fmt.Errorf("re-marshaling request: %w", err)
	}
	if err := sonic.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("decoding request: %w", err)
	}
	return request, nil
}

// watchForKillSignal reads any further frames the parent sends after the
// initial request: a plain int is the kill signal convention
// spawn.ObjectProvider.sendKill uses, and it means the parent went away
// and every subprocess this run has started should die too.
func watchForKillSignal(dec *wire.Decoder, cancel context.CancelFunc) {
	for {
		value, err := dec.Decode()
		if err != nil {
			return
		}
		if _, ok := asSignal(value); ok {
			spawn.KillAll()
			cancel()
			return
		}
	}
}

func asSignal(value interface{}) (int, bool) {
	switch n := value.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// wireReceiver writes each output tuple back to the parent as a
// wire-encoded value.
type wireReceiver struct {
	enc *wire.Encoder
}

func (r wireReceiver) Receive(ctx context.Context, object interface{}) error {
	return r.enc.EncodeValue(object)
}

func (r wireReceiver) ReceiveComplete(ctx context.Context) error { return nil }
