package errs

import (
	"fmt"
	"os"
	"sync"
)

// PickleableException is a wire-safe snapshot of an exception raised on a
// remote worker, reconstructed client-side from the bytes the remote sent
// back over its object stream.
type PickleableException struct {
	CommandDescription string
	Input              interface{}
	ExceptionTypeName  string
	ExceptionMessage   string
}

// NewPickleableException captures err as it crossed a command boundary.
func NewPickleableException(commandDescription string, input interface{}, err error) *PickleableException {
	return &PickleableException{
		CommandDescription: commandDescription,
		Input:              input,
		ExceptionTypeName:  fmt.Sprintf("%T", err),
		ExceptionMessage:   err.Error(),
	}
}

func (e *PickleableException) Error() string {
	return fmt.Sprintf("encountered %s during execution of %s on input %s: %s",
		e.ExceptionTypeName, e.CommandDescription, formatInput(e.Input), e.ExceptionMessage)
}

// Recreate turns the envelope back into a local error. Go has no runtime
// equivalent of re-evaluating the original exception's class by name, so
// the reconstruction is a plain error carrying the original type name and
// message rather than an instance of the original type.
func (e *PickleableException) Recreate() error {
	return fmt.Errorf("%s: %s", e.ExceptionTypeName, e.ExceptionMessage)
}

// Killer wraps an error raised from inside an exception or stderr handler.
// Command.Execute lets a Killer propagate instead of logging and
// continuing, since a handler that itself fails means the engine can no
// longer report errors reliably.
type Killer struct {
	Cause error
}

func (k *Killer) Error() string { return k.Cause.Error() }
func (k *Killer) Unwrap() error { return k.Cause }

func formatInput(input interface{}) string {
	if input == nil {
		return "()"
	}
	return fmt.Sprintf("(%v)", input)
}

// ExceptionHandler is called when an operator's Receive/ReceiveComplete
// returns an error. worker is the identity of the fork/remote worker that
// raised it, or "" for the local thread.
type ExceptionHandler func(err error, op fmt.Stringer, input interface{}, worker string)

// StderrHandler is called for each line of stderr text attributed to an
// operator, spawned subprocess, or remote worker.
type StderrHandler func(line string, op fmt.Stringer, input interface{}, worker string)

var (
	mu               sync.RWMutex
	exceptionHandler ExceptionHandler = defaultExceptionHandler
	stderrHandler    StderrHandler    = defaultStderrHandler
)

// SetExceptionHandler installs handler as the process-wide exception
// handler. A panic raised by handler itself is promoted to a Killer.
func SetExceptionHandler(handler ExceptionHandler) {
	mu.Lock()
	defer mu.Unlock()
	exceptionHandler = func(err error, op fmt.Stringer, input interface{}, worker string) {
		defer func() {
			if r := recover(); r != nil {
				panic(&Killer{Cause: fmt.Errorf("exception handler panicked: %v", r)})
			}
		}()
		handler(err, op, input, worker)
	}
}

// SetStderrHandler installs handler as the process-wide stderr handler.
func SetStderrHandler(handler StderrHandler) {
	mu.Lock()
	defer mu.Unlock()
	stderrHandler = func(line string, op fmt.Stringer, input interface{}, worker string) {
		defer func() {
			if r := recover(); r != nil {
				panic(&Killer{Cause: fmt.Errorf("stderr handler panicked: %v", r)})
			}
		}()
		handler(line, op, input, worker)
	}
}

// HandleException dispatches err to the current exception handler.
func HandleException(err error, op fmt.Stringer, input interface{}, worker string) {
	mu.RLock()
	h := exceptionHandler
	mu.RUnlock()
	h(err, op, input, worker)
}

// HandleStderr dispatches line to the current stderr handler.
func HandleStderr(line string, op fmt.Stringer, input interface{}, worker string) {
	mu.RLock()
	h := stderrHandler
	mu.RUnlock()
	h(line, op, input, worker)
}

func defaultExceptionHandler(err error, op fmt.Stringer, input interface{}, worker string) {
	var buf []byte
	if worker != "" {
		buf = append(buf, "on "...)
		buf = append(buf, worker...)
		buf = append(buf, ": "...)
	}
	buf = append(buf, op.String()...)
	buf = append(buf, formatInput(input)...)
	buf = append(buf, fmt.Sprintf(" %T: %v", err, err)...)
	fmt.Fprintln(os.Stderr, string(buf))
}

func defaultStderrHandler(line string, op fmt.Stringer, input interface{}, worker string) {
	var buf []byte
	if worker != "" {
		buf = append(buf, "on "...)
		buf = append(buf, worker...)
		buf = append(buf, ": "...)
	}
	buf = append(buf, op.String()...)
	buf = append(buf, formatInput(input)...)
	buf = append(buf, ": "...)
	buf = append(buf, line...)
	fmt.Fprintln(os.Stderr, string(buf))
}
