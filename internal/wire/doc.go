// Package wire implements the on-wire object protocol used between a
// Spawn'd process and its parent: a stream of newline-delimited frames,
// each either a plain value or a pickleable exception envelope.
//
// This replaces the original engine's use of cPickle.Pickler/Unpickler
// directly on the pipe with an explicit, language-neutral framing over a
// JSON codec, since the remote side of this protocol is a Go binary
// rather than another Python interpreter that could share Python's
// pickle format.
package wire
