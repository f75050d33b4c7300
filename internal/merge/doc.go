// Package merge implements the merge operator, which combines the output
// of a fork's worker copies back into a single stream: either
// unordered, as outputs become available, or ordered by a key function
// applied to each object, using internal/priorityqueue to interleave the
// per-worker streams in sorted order.
package merge
