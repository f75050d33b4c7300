package cliparser

import (
	"fmt"
	"strings"

	"github.com/geophile/osh/internal/fork"
	"github.com/geophile/osh/internal/pipeline"
)

const (
	tokPipe  = "^"
	tokAt    = "@"
	tokBegin = "["
	tokEnd   = "]"
	tokMerge = "//"
)

// Parse builds a pipeline from a fully-tokenized command line, e.g.
// []string{"gen", "10", "^", "f", "x: x*2"}.
func Parse(tokens []string) (*pipeline.Pipeline, error) {
	p, n, err := parsePipeline(tokens)
	if err != nil {
		return nil, err
	}
	if n != len(tokens) {
		return nil, fmt.Errorf("unexpected token %q", tokens[n])
	}
	p.SetCLITokens(tokens)
	return p, nil
}

// parsePipeline parses OP ('^' OP)* and returns how many tokens it
// consumed.
func parsePipeline(tokens []string) (*pipeline.Pipeline, int, error) {
	op, n, err := parseOp(tokens)
	if err != nil {
		return nil, 0, err
	}
	p := pipeline.NewPipeline(op)
	pos := n
	for pos < len(tokens) && tokens[pos] == tokPipe {
		next, m, err := parseOp(tokens[pos+1:])
		if err != nil {
			return nil, 0, err
		}
		p.AppendOp(next)
		pos = pos + 1 + m
	}
	return p, pos, nil
}

// parseOp parses one of: "@ THREADGEN [ PIPELINE ('//' KEY?)? ]", a
// bracketed sub-pipeline "[ PIPELINE ]", or "NAME ARG*".
func parseOp(tokens []string) (pipeline.Operator, int, error) {
	if len(tokens) == 0 {
		return nil, 0, fmt.Errorf("expected an operator, found end of input")
	}
	switch tokens[0] {
	case tokAt:
		return parseFork(tokens)
	case tokBegin:
		sub, n, err := parsePipeline(tokens[1:])
		if err != nil {
			return nil, 0, err
		}
		pos := 1 + n
		if pos >= len(tokens) || tokens[pos] != tokEnd {
			return nil, 0, fmt.Errorf("expected %q to close %q", tokEnd, tokBegin)
		}
		return sub, pos + 1, nil
	default:
		name := tokens[0]
		ctor, ok := lookup(name)
		if !ok {
			return nil, 0, &ErrUnknownOperator{Name: name}
		}
		end := 1
		for end < len(tokens) && !isDelimiter(tokens[end]) {
			end++
		}
		op, err := ctor(tokens[1:end])
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", name, err)
		}
		return op, end, nil
	}
}

// parseFork parses "@ THREADGEN [ PIPELINE ('//' KEY?)? ]".
func parseFork(tokens []string) (pipeline.Operator, int, error) {
	if len(tokens) < 3 || tokens[0] != tokAt {
		return nil, 0, fmt.Errorf("malformed fork: expected %q THREADGEN %q", tokAt, tokBegin)
	}
	threadgen := tokens[1]
	if tokens[2] != tokBegin {
		return nil, 0, fmt.Errorf("malformed fork: expected %q after thread generator", tokBegin)
	}
	subTokens := tokens[3:]
	sub, n, err := parsePipeline(subTokens)
	if err != nil {
		return nil, 0, err
	}
	pos := 3 + n
	sub.SetCLITokens(subTokens[:n])

	var mergeKey interface{}
	if pos < len(tokens) && tokens[pos] == tokMerge {
		pos++
		if pos < len(tokens) && tokens[pos] != tokEnd {
			mergeKey = tokens[pos]
			pos++
		}
	}
	if pos >= len(tokens) || tokens[pos] != tokEnd {
		return nil, 0, fmt.Errorf("malformed fork: expected closing %q", tokEnd)
	}
	pos++

	forkOp, err := fork.New(threadgen, sub, mergeKey)
	if err != nil {
		return nil, 0, err
	}
	return forkOp, pos, nil
}

func isDelimiter(token string) bool {
	switch token {
	case tokPipe, tokEnd, tokAt, tokMerge:
		return true
	default:
		return false
	}
}

// Join re-forms a token slice the way it would have been typed, purely
// for error messages and logging.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
