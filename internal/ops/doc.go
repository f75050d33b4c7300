// Package ops implements the minimal operator catalogue needed to run a
// pipeline end to end: gen (produce a counted or unbounded integer
// sequence), f (apply a function to each input tuple), and filter (pass
// through only inputs for which a predicate holds). The full operator
// catalogue (file, process, and network collaborators) is out of scope;
// these three are enough to exercise fork, merge, and remote end to end.
package ops
