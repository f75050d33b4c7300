// Package args implements osh's argument binder: the flag/positional
// parser every operator uses to turn its constructor tokens into typed
// values.
//
// A flag spec is a short string like "v:x" declaring that -v takes a
// value and -x is a boolean switch; positional ("anonymous") arguments
// have an arity range (min, max). CLI-style parsing additionally
// collapses "-xyz" into "-x -y -z" when all three are boolean switches,
// and treats "-xyz val" as three switches plus one positional argument
// when x, y or z can't take a value.
package args
