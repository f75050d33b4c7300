// Package pipeline defines the object model shared by every osh command:
// operators, pipelines built from them, generators, and the top-level
// command that drives a pipeline to completion.
//
// Commands are wired into a push-style chain: each operator holds a
// receiver, and an operator that produces output calls Send, which
// forwards to whatever is wired downstream, rather than an operator
// pulling input from an iterator. This mirrors how a Unix pipeline moves
// data - each stage writes to the next as soon as it has something to
// write, rather than buffering a whole stream in memory.
package pipeline
