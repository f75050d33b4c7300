// Package priorityqueue implements a k-way merge over bounded,
// independently-written input streams using a balanced tournament tree,
// the structure the merge operator uses to interleave its fork workers'
// output in sorted order without buffering a whole stream in memory.
//
// Each input has a dedicated buffer with a bounded write side (capacity
// writeBufferCapacity): a slow consumer applies backpressure to a fast
// producer, and a producer that gets far enough ahead blocks until the
// consumer catches up. Two sentinel values, MinusInfinity and Infinity,
// mark "nothing produced yet" and "this input is exhausted" so ordinary
// tournament comparisons handle both without special-casing every node.
package priorityqueue
