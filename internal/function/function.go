package function

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

const (
	lambdaPrefix = "lambda "
	lambdaColon  = "lambda:"
)

// Function is a compiled osh function value.
type Function struct {
	spec string
	mu   sync.Mutex
	vm   *goja.Runtime
	call goja.Callable
}

// New compiles a textual function spec ("[[lambda] ARGS:] EXPRESSION")
// into a callable function value.
func New(spec string) (*Function, error) {
	jsSrc, err := parse(spec)
	if err != nil {
		return nil, err
	}
	return compile(spec, jsSrc)
}

// FromOperator returns the function value for an osh shorthand operator
// such as "+", "max", or "and", or ok=false if op does not name one.
func FromOperator(op string) (f *Function, ok bool) {
	jsSrc, isOp := operatorToFunction(op)
	if !isOp {
		return nil, false
	}
	fn, err := compile(op, jsSrc)
	if err != nil {
		return nil, false
	}
	return fn, true
}

// Create builds a Function from x, which may already be a *Function, an
// operator shorthand string ("+", "max", "and", ...), or a textual
// function spec. This is how osh commands accept function-valued
// arguments interchangeably whether they arrive pre-parsed or as raw
// command-line tokens.
func Create(x interface{}) (*Function, error) {
	switch v := x.(type) {
	case *Function:
		return v, nil
	case string:
		if f, ok := FromOperator(v); ok {
			return f, nil
		}
		return New(v)
	default:
		return nil, fmt.Errorf("%v is not a function", x)
	}
}

// Call invokes the function with args. Calls are serialized with a mutex
// since the underlying goja runtime is not safe for concurrent use; a
// function shared across fork workers pays for that with contention, not
// corruption.
func (f *Function) Call(args ...interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = f.vm.ToValue(a)
	}
	result, err := f.call(goja.Undefined(), jsArgs...)
	if err != nil {
		return nil, fmt.Errorf("function(%s): %w", f.spec, err)
	}
	return result.Export(), nil
}

func (f *Function) String() string {
	return fmt.Sprintf("function(%s)", f.spec)
}

// IsFunctionValue marks Function as a pipeline.FunctionValue: an argument
// that must be hidden behind an integer reference while a pipeline is
// cloned for a fork worker, since a goja-backed closure can't be copied
// like ordinary data.
func (f *Function) IsFunctionValue() {}

func compile(spec, jsSrc string) (*Function, error) {
	vm := goja.New()
	val, err := vm.RunString(jsSrc)
	if err != nil {
		return nil, fmt.Errorf("illegal function spec: %s: %w", spec, err)
	}
	call, ok := goja.AssertFunction(val)
	if !ok {
		return nil, fmt.Errorf("illegal function spec: %s", spec)
	}
	return &Function{spec: spec, vm: vm, call: call}, nil
}

// parse turns a textual function spec into a JS function literal source.
func parse(spec string) (string, error) {
	trimmed := strings.TrimSpace(spec)
	body := trimmed
	switch {
	case strings.HasPrefix(trimmed, lambdaPrefix):
		body = trimmed[len(lambdaPrefix):]
	case strings.HasPrefix(trimmed, lambdaColon):
		body = trimmed[len("lambda"):]
	}
	argsPart := ""
	exprPart := body
	if idx := topLevelColon(body); idx >= 0 {
		argsPart = strings.TrimSpace(body[:idx])
		exprPart = strings.TrimSpace(body[idx+1:])
	}
	if exprPart == "" {
		return "", &NotAFunctionError{Spec: spec}
	}
	return fmt.Sprintf("(function(%s) { return (%s); })", argsPart, exprPart), nil
}

// topLevelColon returns the index of the first ':' not nested inside
// parens, brackets, or braces, or -1 if there is none.
func topLevelColon(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func operatorToFunction(op string) (string, bool) {
	switch op {
	case "+":
		return "(function(x, y) { return x + y; })", true
	case "*":
		return "(function(x, y) { return x * y; })", true
	case "^":
		return "(function(x, y) { return x ^ y; })", true
	case "&":
		return "(function(x, y) { return x & y; })", true
	case "|":
		return "(function(x, y) { return x | y; })", true
	case "and":
		return "(function(x, y) { return x && y; })", true
	case "or":
		return "(function(x, y) { return x || y; })", true
	case "max":
		return "(function(x, y) { return x > y ? x : y; })", true
	case "min":
		return "(function(x, y) { return x < y ? x : y; })", true
	default:
		return "", false
	}
}

// NotAFunctionError reports a textual spec that could not be parsed as a
// function value.
type NotAFunctionError struct {
	Spec string
}

func (e *NotAFunctionError) Error() string {
	return fmt.Sprintf("illegal function spec: %s", e.Spec)
}
