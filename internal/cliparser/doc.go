// Package cliparser turns a line of already-tokenized command-line
// arguments into an operator pipeline: OP ('^' OP)*, where OP is either
// a registered operator name followed by its own arguments, a bracketed
// sub-pipeline, or an "@ THREADGEN [ PIPELINE ]" fork.
//
// Unlike the original engine's character-level grammar, structural
// tokens ('^', '@', '[', ']', "//") must appear as their own argv
// elements — "gen 10 ^ f x" rather than "gen 10^f x" glued together.
// This is the idiomatic Go CLI shape (the same convention flag packages
// like pflag use) and avoids re-splitting already-tokenized argv
// elements at arbitrary character boundaries.
package cliparser
