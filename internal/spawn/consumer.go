package spawn

import (
	"bufio"
	"io"
	"sync"

	"github.com/geophile/osh/internal/wire"
)

// LineConsumer reads a subprocess stream line by line, calling handler
// for each line read.
type LineConsumer struct {
	handler func(line string)

	mu      sync.Mutex
	stream  io.ReadCloser
	spawned *Spawn
	finished bool
}

// NewLineConsumer returns a Consumer that calls handler for every line of
// output.
func NewLineConsumer(handler func(line string)) *LineConsumer {
	return &LineConsumer{handler: handler}
}

// DiscardLines returns a Consumer that drains a stream without acting on
// it, the Go equivalent of osh's _ignore_output().
func DiscardLines() *LineConsumer {
	return NewLineConsumer(func(string) {})
}

// CollectLines returns a Consumer that appends every line it reads to
// lines.
func CollectLines(lines *[]string) *LineConsumer {
	var mu sync.Mutex
	return NewLineConsumer(func(line string) {
		mu.Lock()
		defer mu.Unlock()
		*lines = append(*lines, line)
	})
}

func (c *LineConsumer) initialize(r io.ReadCloser, s *Spawn) {
	c.stream = r
	c.spawned = s
}

func (c *LineConsumer) start() { go c.run() }

func (c *LineConsumer) run() {
	defer func() {
		c.stream.Close()
		c.mu.Lock()
		c.finished = true
		c.mu.Unlock()
		c.spawned.notifyCompletion()
	}()
	scanner := bufio.NewScanner(c.stream)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		c.handler(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		c.spawned.setTerminatingException(err)
	}
}

func (c *LineConsumer) done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

// ObjectConsumer reads a wire-encoded object stream, calling handler for
// each decoded value (a plain object or an *errs.PickleableException).
type ObjectConsumer struct {
	handler func(object interface{})

	mu       sync.Mutex
	stream   io.ReadCloser
	spawned  *Spawn
	finished bool
}

// NewObjectConsumer returns a Consumer that calls handler for every
// object decoded from the stream.
func NewObjectConsumer(handler func(object interface{})) *ObjectConsumer {
	return &ObjectConsumer{handler: handler}
}

func (c *ObjectConsumer) initialize(r io.ReadCloser, s *Spawn) {
	c.stream = r
	c.spawned = s
}

func (c *ObjectConsumer) start() { go c.run() }

func (c *ObjectConsumer) run() {
	defer func() {
		c.stream.Close()
		c.mu.Lock()
		c.finished = true
		c.mu.Unlock()
		c.spawned.notifyCompletion()
	}()
	dec := wire.NewDecoder(c.stream)
	for {
		object, err := dec.Decode()
		if err != nil {
			if err != io.EOF {
				c.spawned.setTerminatingException(err)
			}
			return
		}
		c.handler(object)
	}
}

func (c *ObjectConsumer) done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}
