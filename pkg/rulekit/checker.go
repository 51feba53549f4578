// Package rulekit is an embeddable evaluator for a tiny boolean rule
// language: expressions of the form `var.method(value)` combined with &&,
// || and !, evaluated against caller-registered variables and methods.
//
// Expressions are re-tokenized and re-evaluated on every Eval call. No AST
// is materialized and nothing is cached: the result of parsing a grammar
// production is the boolean value of that production.
package rulekit

import (
	"fmt"

	"github.com/rulewise/rulekit/internal/lexer"
	"github.com/rulewise/rulekit/internal/lookup"
	"github.com/rulewise/rulekit/internal/token"
)

// Checker holds the variable store and the method registry and evaluates
// expressions against them.
//
// A Checker must not be evaluated concurrently while its variables or
// methods are being mutated; synchronizing that is the caller's job.
// Concurrent Eval calls against a stable store are safe.
type Checker struct {
	vars    *lookup.Table[Value]
	methods *lookup.Table[MethodFn]
}

type options struct {
	noBuiltins bool
}

// Option configures a Checker at construction time.
type Option func(*options)

// WithoutBuiltins starts the Checker with an empty method registry. The
// caller registers its own methods, or calls InitMethods later to get the
// defaults back.
func WithoutBuiltins() Option {
	return func(o *options) { o.noBuiltins = true }
}

// New returns a Checker preloaded with the built-in comparison methods
// unless WithoutBuiltins is given.
func New(opts ...Option) *Checker {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Checker{
		vars:    lookup.New[Value](),
		methods: lookup.New[MethodFn](),
	}
	if !o.noBuiltins {
		c.InitMethods()
	}
	return c
}

// SetVar binds name to an arbitrary Value, replacing any previous binding.
func (c *Checker) SetVar(name string, v Value) {
	c.vars.Set(name, v)
}

func (c *Checker) SetVarInt(name string, v int32) {
	c.vars.Set(name, IntValue(v))
}

func (c *Checker) SetVarFloat(name string, v float32) {
	c.vars.Set(name, FloatValue(v))
}

func (c *Checker) SetVarString(name, v string) {
	c.vars.Set(name, StringValue(v))
}

// ClearVars removes every variable binding.
func (c *Checker) ClearVars() {
	c.vars.Clear()
}

// SetMethod registers fn under name, fully overriding a built-in or
// previously registered method of the same name.
func (c *Checker) SetMethod(name string, fn MethodFn) {
	c.methods.Set(name, fn)
}

// ClearMethods removes every method, built-ins included.
func (c *Checker) ClearMethods() {
	c.methods.Clear()
}

// Eval parses and evaluates expr in a single pass. A non-nil error carries
// the first parse or evaluation failure verbatim; the boolean is undefined
// in that case. Evaluation never mutates the variable store or the method
// registry.
func (c *Checker) Eval(expr string) (bool, error) {
	ps := &parseState{lex: lexer.New(expr)}
	c.parseExpr(ps)

	// the whole input must have been consumed; leftover tokens mean the
	// expression continued past a complete parse
	if ps.err == nil {
		if t := ps.lex.PeekToken(); t.Type != token.EOF {
			return false, fmt.Errorf("unexpected token '%s'", t.Text)
		}
	}
	return ps.result, ps.err
}
