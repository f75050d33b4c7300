package args

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/pipeline"
)

// Mode selects how textual tokens are interpreted: API callers pass
// already-typed Go values through untouched, CLI callers pass strings
// that get evaluated as literals.
type Mode int

const (
	API Mode = iota
	CLI
)

// Unbounded marks an arity range with no upper limit.
const Unbounded = -1

// Option is a -flag token, optionally carrying a value.
type Option struct {
	Key string
	Val interface{}
}

// NewOption returns a boolean switch option (-x).
func NewOption(key string) Option { return Option{Key: key, Val: true} }

// NewValueOption returns a -flag=value option.
func NewValueOption(key string, val interface{}) Option { return Option{Key: key, Val: val} }

func (o Option) String() string {
	if b, ok := o.Val.(bool); ok && b {
		return fmt.Sprintf("option(%s)", o.Key)
	}
	return fmt.Sprintf("option(%s: %v)", o.Key, o.Val)
}

const (
	keyAndValue = true
	keyOnly     = false
)

// ArgError reports a malformed flag spec, an unrecognized flag, or a
// positional-arity violation.
type ArgError struct{ Message string }

func (e *ArgError) Error() string { return e.Message }

// Args binds an operator's constructor tokens (flags and positional
// arguments) against a flag spec, then exposes them through typed
// accessors.
type Args struct {
	op        fmt.Stringer
	mode      Mode
	validKeys map[string]bool
	minAnon   int
	maxAnon   int
	keyval    map[string]interface{}
	anon      []interface{}
	anonPos   int
	tokens    []interface{} // CLI only, consumed by Done
}

// New parses flagSpec (e.g. "v:x", meaning -v takes a value and -x is a
// boolean switch) and returns an Args bound to op, accepting between
// minAnon and maxAnon (or Unbounded) positional arguments.
func New(op fmt.Stringer, mode Mode, flagSpec string, minAnon, maxAnon int) (*Args, error) {
	validKeys := map[string]bool{}
	var lastKey byte
	var lastChar byte
	for i := 0; i < len(flagSpec); i++ {
		c := flagSpec[i]
		if c == ':' {
			if lastKey == 0 || lastChar == ':' {
				return nil, &ArgError{fmt.Sprintf("illegal flag specification for %s: %s", op, flagSpec)}
			}
			validKeys["-"+string(lastKey)] = keyAndValue
		} else {
			validKeys["-"+string(c)] = keyOnly
			lastKey = c
		}
		lastChar = c
	}
	return &Args{
		op:        op,
		mode:      mode,
		validKeys: validKeys,
		minAnon:   minAnon,
		maxAnon:   maxAnon,
		keyval:    map[string]interface{}{},
	}, nil
}

func (a *Args) String() string {
	var b strings.Builder
	if len(a.keyval) > 0 {
		b.WriteString("{")
		first := true
		for k, v := range a.keyval {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(k)
			if v != true {
				b.WriteString(": ")
				fmt.Fprintf(&b, "%v", v)
			}
		}
		b.WriteString("}")
	}
	b.WriteString("[")
	for i, v := range a.anon {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteString("]")
	return b.String()
}

// AddArg binds one already-typed argument: an Option sets a flag (with
// -xyz expanded into -x -y -z when every letter is a boolean switch),
// anything else is appended as a positional argument.
func (a *Args) AddArg(arg interface{}) error {
	opt, isOption := arg.(Option)
	if !isOption {
		a.anon = append(a.anon, arg)
		return nil
	}
	key := strings.TrimPrefix(opt.Key, "-")
	for _, ch := range key {
		flag := "-" + string(ch)
		flagType, known := a.validKeys[flag]
		if !known {
			return &ArgError{fmt.Sprintf("%s is not a valid key for %s", flag, a.op)}
		}
		if flagType == keyAndValue {
			if b, ok := opt.Val.(bool); ok && b {
				return &ArgError{fmt.Sprintf("no value specified for %s", flag)}
			}
		} else if _, ok := opt.Val.(bool); !ok {
			return &ArgError{fmt.Sprintf("should not specify a value for %s", flag)}
		}
		if _, exists := a.keyval[flag]; exists {
			return &ArgError{fmt.Sprintf("attempt to specify multiple values for %s", flag)}
		}
		a.keyval[flag] = opt.Val
	}
	return nil
}

// AddToken records a raw CLI token for later binding by Done. Only valid
// in CLI mode.
func (a *Args) AddToken(token string) {
	a.tokens = append(a.tokens, token)
}

// Done finalizes argument binding: in CLI mode it walks the recorded
// tokens through the flag/positional state machine; in both modes it then
// checks the positional arity.
func (a *Args) Done() error {
	if a.mode == CLI && a.tokens != nil {
		if err := a.processTokens(); err != nil {
			return err
		}
		a.tokens = nil
	}
	if len(a.anon) < a.minAnon {
		return &ArgError{fmt.Sprintf("too few arguments for %s", a.op)}
	}
	if a.maxAnon != Unbounded && len(a.anon) > a.maxAnon {
		return &ArgError{fmt.Sprintf("too many arguments for %s", a.op)}
	}
	return nil
}

type tokenState int

const (
	stateBeforeKey tokenState = iota
	stateBetweenKeyAndVal
	stateAnonymous
)

func (a *Args) processTokens() error {
	state := stateBeforeKey
	var prevToken string
	for _, raw := range a.tokens {
		token, _ := raw.(string)
		var err error
		state, err = a.processToken(state, prevToken, token)
		if err != nil {
			return err
		}
		prevToken = token
	}
	return nil
}

func (a *Args) processToken(state tokenState, prevToken, token string) (tokenState, error) {
	switch state {
	case stateBeforeKey:
		if a.looksLikeFlag(token) {
			return a.initializeKeyToken(token)
		}
		a.anon = append(a.anon, token)
		return stateAnonymous, nil
	case stateBetweenKeyAndVal:
		if a.looksLikeFlag(token) {
			return a.initializeKeyToken(token)
		}
		if len(prevToken) > 2 {
			// -xyz val: x, y, z are flags, val is positional.
			if _, err := a.initializeKeyToken(prevToken); err != nil {
				return state, err
			}
			a.anon = append(a.anon, token)
			return stateAnonymous, nil
		}
		a.keyval[prevToken] = token
		return stateBeforeKey, nil
	case stateAnonymous:
		a.anon = append(a.anon, token)
		return stateAnonymous, nil
	default:
		return state, &ArgError{"unreachable token state"}
	}
}

func (a *Args) looksLikeFlag(token string) bool {
	if !strings.HasPrefix(token, "-") {
		return false
	}
	if _, err := strconv.Atoi(token); err == nil {
		// Looks like a negative number unless it's also a declared flag.
		_, declared := a.validKeys[token]
		return declared
	}
	return true
}

// initializeKeyToken expands "-xyz" into flags -x, -y, -z (each must be a
// boolean switch when there's more than one letter) and returns the next
// parser state: stateBetweenKeyAndVal if the lone flag takes a value.
func (a *Args) initializeKeyToken(token string) (tokenState, error) {
	letters := token[1:]
	multiflag := len(letters) > 1
	var lastFlagType bool
	for _, ch := range letters {
		flag := "-" + string(ch)
		flagType, known := a.validKeys[flag]
		if !known {
			return stateBeforeKey, &ArgError{fmt.Sprintf("undefined flag for %s: %s", a.op, flag)}
		}
		if flagType == keyAndValue && multiflag {
			return stateBeforeKey, &ArgError{fmt.Sprintf("%s needs a value so don't include it with others: %s", flag, token)}
		}
		a.keyval[flag] = true
		lastFlagType = flagType
	}
	if !multiflag && lastFlagType == keyAndValue {
		return stateBetweenKeyAndVal, nil
	}
	return stateBeforeKey, nil
}

// IntArg returns the value bound to a key-and-value flag as an int, and
// false if it wasn't supplied.
func (a *Args) IntArg(key string) (int, bool) {
	val, ok := a.keyval[key]
	if !ok {
		return 0, false
	}
	n, err := toInt(val)
	return n, err == nil
}

// StringArg returns the value bound to a key-and-value flag as a string.
func (a *Args) StringArg(key string) (string, bool) {
	val, ok := a.keyval[key]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", val), true
}

// FunctionArg returns the value bound to a key-and-value flag as a
// function.Function.
func (a *Args) FunctionArg(key string) (*function.Function, error) {
	val, ok := a.keyval[key]
	if !ok {
		return nil, nil
	}
	return function.Create(val)
}

// Arg returns the raw value bound to key, or nil.
func (a *Args) Arg(key string) interface{} { return a.keyval[key] }

// Flag reports whether a boolean switch was set.
func (a *Args) Flag(key string) bool {
	val, ok := a.keyval[key]
	return ok && val == true
}

// EvalArg returns the value bound to key: as-is in API mode, evaluated as
// a literal expression in CLI mode.
func (a *Args) EvalArg(key string) (interface{}, error) {
	val, ok := a.keyval[key]
	if !ok {
		return nil, nil
	}
	if a.mode == API {
		return val, nil
	}
	return evalLiteral(fmt.Sprintf("%v", val))
}

// HasNext reports whether another positional argument remains.
func (a *Args) HasNext() bool { return a.anonPos < len(a.anon) }

func (a *Args) nextAnon() interface{} {
	if !a.HasNext() {
		return nil
	}
	v := a.anon[a.anonPos]
	a.anonPos++
	return v
}

// NextInt consumes and returns the next positional argument as an int.
func (a *Args) NextInt() (int, bool) {
	v := a.nextAnon()
	if v == nil {
		return 0, false
	}
	n, err := toInt(v)
	return n, err == nil
}

// NextString consumes and returns the next positional argument as a
// string.
func (a *Args) NextString() (string, bool) {
	v := a.nextAnon()
	if v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// NextFunction consumes and returns the next positional argument as a
// function.Function.
func (a *Args) NextFunction() (*function.Function, error) {
	v := a.nextAnon()
	if v == nil {
		return nil, nil
	}
	return function.Create(v)
}

// Next consumes and returns the next positional argument as-is.
func (a *Args) Next() interface{} { return a.nextAnon() }

// NextEval consumes the next positional argument: as-is in API mode,
// evaluated as a literal expression in CLI mode.
func (a *Args) NextEval() (interface{}, error) {
	v := a.nextAnon()
	if v == nil {
		return nil, nil
	}
	if a.mode == API {
		return v, nil
	}
	return evalLiteral(fmt.Sprintf("%v", v))
}

// Remaining consumes and returns every positional argument not yet taken.
func (a *Args) Remaining() []interface{} {
	rest := a.anon[a.anonPos:]
	a.anonPos = len(a.anon)
	return rest
}

// ReplaceFunctionByReference hides every function-valued argument (flag
// values and positional arguments alike) behind an integer reference, so
// this Args survives a pipeline clone; see package clone.
func (a *Args) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	for k, v := range a.keyval {
		a.keyval[k] = store.ToReference(v)
	}
	for i, v := range a.anon {
		a.anon[i] = store.ToReference(v)
	}
}

// RestoreFunction reverses ReplaceFunctionByReference.
func (a *Args) RestoreFunction(store *pipeline.FunctionStore) {
	for k, v := range a.keyval {
		a.keyval[k] = store.ToFunction(v)
	}
	for i, v := range a.anon {
		a.anon[i] = store.ToFunction(v)
	}
}

// Clone returns an independent copy of a, sharing no mutable state.
func (a *Args) Clone() *Args {
	keyval := make(map[string]interface{}, len(a.keyval))
	for k, v := range a.keyval {
		keyval[k] = v
	}
	anon := make([]interface{}, len(a.anon))
	for i, v := range a.anon {
		if op, ok := v.(pipeline.Operator); ok {
			anon[i] = op.Clone()
		} else {
			anon[i] = v
		}
	}
	return &Args{
		op:        a.op,
		mode:      a.mode,
		validKeys: a.validKeys,
		minAnon:   a.minAnon,
		maxAnon:   a.maxAnon,
		keyval:    keyval,
		anon:      anon,
	}
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, &ArgError{fmt.Sprintf("%v is not an integer", v)}
	}
}

// evalLiteral evaluates a CLI token as a literal expression (an int,
// float, string, or list), the Go-native replacement for the original
// parser's use of Python's eval() on raw argument text.
func evalLiteral(token string) (interface{}, error) {
	vm := goja.New()
	val, err := vm.RunString(token)
	if err != nil {
		return nil, &ArgError{fmt.Sprintf("cannot evaluate %q: %v", token, err)}
	}
	return val.Export(), nil
}
