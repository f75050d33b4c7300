package priorityqueue

import "sync"

// sentinel is a private type so that Infinity and MinusInfinity can never
// collide with a real merge key produced by a pipeline.
type sentinel int

const (
	// Infinity compares greater than every real value. It marks an input
	// stream as exhausted.
	Infinity sentinel = iota
	// MinusInfinity compares less than every real value. It is the
	// initial content of every node before anything has been read.
	MinusInfinity
)

// compareWithSentinels wraps a caller-supplied comparator so that Infinity
// and MinusInfinity order correctly against both real values and each
// other, without the comparator ever needing to know about them.
func compareWithSentinels(compare func(a, b interface{}) int, x, y interface{}) int {
	xs, xIsSentinel := x.(sentinel)
	ys, yIsSentinel := y.(sentinel)
	switch {
	case xIsSentinel && yIsSentinel:
		switch {
		case xs == ys:
			return 0
		case xs == MinusInfinity:
			return -1
		default:
			return 1
		}
	case xIsSentinel:
		if xs == MinusInfinity {
			return -1
		}
		return 1
	case yIsSentinel:
		if ys == MinusInfinity {
			return 1
		}
		return -1
	default:
		return compare(x, y)
	}
}

type nodeKind int

const (
	nodeInterior nodeKind = iota
	nodeInput
	nodeFiller
)

type node struct {
	kind    nodeKind
	content interface{}
	buf     *buffer // nodeInput only
	// winner is, for an interior node, which child (left or right index)
	// most recently supplied content. It drives the walk from root to
	// leaf when a value is popped.
	winner int
}

// Queue merges numInputs independently-written, individually sorted
// streams into a single sorted stream, using a balanced tournament tree
// whose leaves are the inputs (padded with filler leaves up to the next
// power of two) and whose interior nodes each hold whichever child
// currently has the smaller (or, with a max comparator, larger) content.
type Queue struct {
	mu       sync.Mutex
	nodes    []*node
	leaves   []int // index into nodes, one per input, in input order
	compare  func(a, b interface{}) int
	promoted bool
}

// New builds a tournament tree over numInputs inputs, ordered by compare.
// compare should return <0, 0, >0 the way sort.Interface comparators do;
// pass a reversed comparator to get a max-merge instead of a min-merge.
func New(compare func(a, b interface{}) int, numInputs int) *Queue {
	if numInputs < 1 {
		numInputs = 1
	}
	leafCount := 1
	for leafCount < numInputs {
		leafCount *= 2
	}
	totalNodes := 2*leafCount - 1
	q := &Queue{
		nodes:   make([]*node, totalNodes),
		leaves:  make([]int, numInputs),
		compare: compare,
	}
	firstLeaf := leafCount - 1
	for i := 0; i < totalNodes; i++ {
		if i < firstLeaf {
			q.nodes[i] = &node{kind: nodeInterior, content: MinusInfinity}
			continue
		}
		leafPos := i - firstLeaf
		if leafPos < numInputs {
			q.nodes[i] = &node{kind: nodeInput, content: MinusInfinity, buf: newBuffer(leafPos, compare)}
			q.leaves[leafPos] = i
		} else {
			q.nodes[i] = &node{kind: nodeFiller, content: Infinity}
		}
	}
	return q
}

func parentOf(i int) int { return (i - 1) / 2 }
func leftOf(i int) int   { return i*2 + 1 }
func rightOf(i int) int  { return i*2 + 2 }

func (q *Queue) isLeaf(i int) bool {
	return leftOf(i) >= len(q.nodes)
}

// Add appends an object to input stream source. It blocks while that
// input's write buffer is full.
func (q *Queue) Add(source int, object interface{}) error {
	return q.nodes[q.leaves[source]].buf.add(object)
}

// Done marks input stream source as exhausted; no further Add calls on it
// are permitted.
func (q *Queue) Done(source int) error {
	return q.nodes[q.leaves[source]].buf.add(Infinity)
}

// Close releases the background tickers owned by every input buffer.
func (q *Queue) Close() {
	for _, i := range q.leaves {
		q.nodes[i].buf.close()
	}
}

// refresh recomputes content bottom-up for the subtree rooted at i,
// recording at each interior node which child won so that a later pop can
// walk straight down to the leaf that produced the root's value.
func (q *Queue) refresh(i int) {
	n := q.nodes[i]
	switch n.kind {
	case nodeInput:
		n.content = n.buf.current()
	case nodeFiller:
		n.content = Infinity
	case nodeInterior:
		l, r := leftOf(i), rightOf(i)
		q.refresh(l)
		q.refresh(r)
		if compareWithSentinels(q.compare, q.nodes[l].content, q.nodes[r].content) <= 0 {
			n.content = q.nodes[l].content
			n.winner = l
		} else {
			n.content = q.nodes[r].content
			n.winner = r
		}
	}
}

// Next returns the smallest (per compare) not-yet-returned value across
// all inputs, and true. Once every input has been exhausted it returns
// (nil, false).
func (q *Queue) Next() (interface{}, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.refresh(0)
	if q.nodes[0].content == Infinity {
		return nil, false
	}
	// Walk from the root down to the winning leaf.
	i := 0
	for !q.isLeaf(i) {
		i = q.nodes[i].winner
	}
	value := q.nodes[i].buf.next()
	return value, true
}
