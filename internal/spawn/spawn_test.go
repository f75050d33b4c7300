package spawn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geophile/osh/internal/spawn"
)

func TestRunCapturesStdoutLines(t *testing.T) {
	var lines []string
	s := spawn.New("printf 'a\\nb\\nc\\n'", nil, spawn.CollectLines(&lines), nil)
	s.Run()

	assert.Equal(t, []string{"a", "b", "c"}, lines)
	assert.NoError(t, s.TerminatingException())
}

func TestRunCapturesStderrSeparately(t *testing.T) {
	var out, errLines []string
	s := spawn.New("echo out; echo err 1>&2", nil,
		spawn.CollectLines(&out), spawn.CollectLines(&errLines))
	s.Run()

	assert.Equal(t, []string{"out"}, out)
	assert.Equal(t, []string{"err"}, errLines)
}

func TestObjectProviderFeedsStdin(t *testing.T) {
	var out []string
	provider := spawn.NewObjectProvider([]interface{}{"hello", 42})
	s := spawn.New("cat", provider, spawn.CollectLines(&out), nil)
	s.Run()

	assert.NotEmpty(t, out)
}

func TestRunEmptyCommandWithDefaultConsumers(t *testing.T) {
	s := spawn.New("", nil, nil, nil)
	s.Run()
	// A completely empty command still runs a shell that exits
	// immediately; this just exercises Run without a provider or
	// explicit consumers, which should fall back to discarding output.
	assert.NoError(t, s.TerminatingException())
}

func TestKillAllReachesRegisteredProcesses(t *testing.T) {
	done := make(chan struct{})
	s := spawn.New("sleep 5", nil, nil, nil)
	go func() {
		s.Run()
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)
	spawn.KillAll()
	<-done
}
