package spawn

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/geophile/osh/internal/logging"
)

const completionPollInterval = time.Second

// InputProvider drives a subprocess's stdin.
type InputProvider interface {
	initialize(w io.WriteCloser, s *Spawn)
	run() error
	sendKill(signal int) error
}

// Consumer drains one of a subprocess's output streams (stdout or
// stderr) until EOF, reporting completion and any error back to the
// owning Spawn.
type Consumer interface {
	initialize(r io.ReadCloser, s *Spawn)
	start()
	done() bool
}

// Spawn runs command as a subprocess via the shell, wiring an optional
// InputProvider to its stdin and a Consumer to each of stdout and
// stderr. Run blocks until the process and both consumers have finished.
type Spawn struct {
	command       string
	inputProvider InputProvider
	outConsumer   Consumer
	errConsumer   Consumer

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	registry *registry

	mu                  sync.Mutex
	cond                *sync.Cond
	terminatingException error
}

// New constructs a Spawn that runs command through /bin/sh -c. A nil
// outConsumer or errConsumer discards that stream.
func New(command string, inputProvider InputProvider, outConsumer, errConsumer Consumer) *Spawn {
	if outConsumer == nil {
		outConsumer = DiscardLines()
	}
	if errConsumer == nil {
		errConsumer = DiscardLines()
	}
	s := &Spawn{
		command:       command,
		inputProvider: inputProvider,
		outConsumer:   outConsumer,
		errConsumer:   errConsumer,
		registry:      defaultRegistry,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// NewSSH constructs a Spawn that runs command on host over ssh, logged
// in as user. If identity is non-empty it's passed as ssh's -i argument.
func NewSSH(user, identity, host, command string, inputProvider InputProvider, outConsumer, errConsumer Consumer) *Spawn {
	return New(sshCommand(user, identity, host, command), inputProvider, outConsumer, errConsumer)
}

func sshCommand(user, identity, host, command string) string {
	if identity != "" {
		return fmt.Sprintf(`ssh %s -i %s -T -o StrictHostKeyChecking=no -l %s "%s"`, host, identity, user, command)
	}
	return fmt.Sprintf(`ssh %s -T -o StrictHostKeyChecking=no -l %s "%s"`, host, user, command)
}

// PID returns the spawned process's id. Valid only after Run has started
// the process.
func (s *Spawn) PID() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// TerminatingException returns the error (if any) that ended this
// process: a failure to start it, or an error surfaced by a consumer or
// the input provider.
func (s *Spawn) TerminatingException() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminatingException
}

func (s *Spawn) setTerminatingException(err error) {
	s.mu.Lock()
	if s.terminatingException == nil {
		s.terminatingException = err
	}
	s.mu.Unlock()
}

// Run starts the subprocess and blocks until it exits and both consumers
// have drained their streams.
func (s *Spawn) Run() {
	s.cmd = exec.Command("/bin/sh", "-c", s.command)
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		s.setTerminatingException(err)
		return
	}
	stderr, err := s.cmd.StderrPipe()
	if err != nil {
		s.setTerminatingException(err)
		return
	}
	if s.inputProvider != nil {
		stdin, err := s.cmd.StdinPipe()
		if err != nil {
			s.setTerminatingException(err)
			return
		}
		s.stdin = stdin
	}
	if err := s.cmd.Start(); err != nil {
		s.setTerminatingException(err)
		return
	}
	s.registry.add(s)
	defer s.registry.remove(s)
	log := logging.Default().Worker(fmt.Sprintf("pid:%d", s.cmd.Process.Pid))
	log.Debug("spawned subprocess", zap.String("command", s.command))
	defer func() {
		if exc := s.TerminatingException(); exc != nil {
			log.Warn("subprocess ended with error", zap.Error(exc))
		} else {
			log.Debug("subprocess ended")
		}
	}()

	if s.inputProvider != nil {
		s.inputProvider.initialize(s.stdin, s)
		go func() {
			if err := s.inputProvider.run(); err != nil {
				s.setTerminatingException(err)
			}
			s.stdin.Close()
		}()
	}

	s.outConsumer.initialize(stdout, s)
	s.outConsumer.start()
	s.errConsumer.initialize(stderr, s)
	s.errConsumer.start()

	stop := make(chan struct{})
	go s.tick(stop)
	s.cmd.Wait()
	s.waitForConsumersToFinish()
	close(stop)
	s.closeInputStream()
}

func (s *Spawn) tick(stop <-chan struct{}) {
	ticker := time.NewTicker(completionPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-stop:
			return
		}
	}
}

func (s *Spawn) waitForConsumersToFinish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !(s.outConsumer.done() && s.errConsumer.done()) {
		s.cond.Wait()
	}
}

// notifyCompletion is called by a Consumer once its stream hits EOF.
func (s *Spawn) notifyCompletion() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Spawn) closeInputStream() {
	if s.stdin != nil {
		s.stdin.Close()
	}
}

// Kill sends an input-provider kill signal (if there is one) then
// SIGKILLs the process directly.
func (s *Spawn) Kill() {
	if s.inputProvider != nil {
		s.inputProvider.sendKill(9)
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
}
