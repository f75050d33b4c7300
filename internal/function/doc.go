// Package function implements osh's function value: a small textual
// notation used by commands such as f and filter to accept a callable
// argument on the command line.
//
// Syntax: [[lambda] ARGS:] EXPRESSION, where ARGS is a comma-separated
// parameter list and EXPRESSION is evaluated in terms of those parameters.
// The lambda keyword is optional. ARGS may be omitted only for a function
// that takes no arguments.
//
// Expressions are evaluated by a pure-Go ECMAScript engine rather than by
// calling back into the host language's interpreter, so function arguments
// are ordinary osh values (numbers, strings) passed across that boundary.
package function
