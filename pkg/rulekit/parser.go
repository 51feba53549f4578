package rulekit

import (
	"errors"

	"github.com/rulewise/rulekit/internal/lexer"
	"github.com/rulewise/rulekit/internal/token"
)

// parseState is the transient per-Eval state: the lexer cursor, the most
// recently consumed token, the running boolean result and the first error
// encountered. It is never shared across calls.
type parseState struct {
	lex    *lexer.Lexer
	tok    token.Token
	result bool
	err    error
}

func (ps *parseState) fail(msg string) bool {
	ps.err = errors.New(msg)
	return false
}

// parseExpr evaluates:
//
//	expr -> '(' expr ')'
//	      | statement
//	      | statement boolop expr
//
// The boolop arm recurses into the full expression grammar, so chains of
// mixed && and || group to the right with no precedence between the two
// operators. Both operands are always parsed and evaluated: the token
// stream has to be consumed whatever the left side produced, so a
// side-effecting method on the right runs even when the left already
// decides the outcome.
func (c *Checker) parseExpr(ps *parseState) bool {
	ps.tok = ps.lex.PeekToken()
	if ps.tok.Type == token.EOF {
		return ps.fail("expecting expression")
	}

	if ps.tok.Type == token.LPAREN {
		ps.tok = ps.lex.NextToken() // consume '('
		if !c.parseExpr(ps) {
			return false
		}
		ps.tok = ps.lex.NextToken()
		if ps.tok.Type != token.RPAREN {
			return ps.fail("expecting ')'")
		}
	} else if !c.parseStatement(ps) {
		return false
	}

	switch ps.lex.PeekToken().Type {
	case token.AND:
		ps.tok = ps.lex.NextToken() // consume '&&'
		left := ps.result
		if !c.parseExpr(ps) {
			return false
		}
		ps.result = ps.result && left

	case token.OR:
		ps.tok = ps.lex.NextToken() // consume '||'
		left := ps.result
		if !c.parseExpr(ps) {
			return false
		}
		ps.result = ps.result || left
	}

	return true
}

// parseStatement evaluates:
//
//	statement -> id '.' id '(' value ')'
//	           | '!' statement
//
// The variable is resolved before the method, so an unknown variable is
// reported even when the method is unknown too.
func (c *Checker) parseStatement(ps *parseState) bool {
	ps.tok = ps.lex.NextToken()
	if ps.tok.Type == token.EOF {
		return ps.fail("expecting statement")
	}

	if ps.tok.Type == token.NOT {
		if !c.parseStatement(ps) {
			return false
		}
		ps.result = !ps.result
		return true
	}

	if ps.tok.Type != token.IDENT {
		return ps.fail("expecting identifier")
	}
	name := ps.tok.Text

	ps.tok = ps.lex.NextToken()
	if ps.tok.Type != token.DOT {
		return ps.fail("expecting '.'")
	}

	ps.tok = ps.lex.NextToken()
	if ps.tok.Type != token.IDENT {
		return ps.fail("expecting identifier")
	}
	method := ps.tok.Text

	ps.tok = ps.lex.NextToken()
	if ps.tok.Type != token.LPAREN {
		return ps.fail("expecting '('")
	}

	arg, ok := c.parseValue(ps)
	if !ok {
		return false
	}

	ps.tok = ps.lex.NextToken()
	if ps.tok.Type != token.RPAREN {
		return ps.fail("expecting ')'")
	}

	recv, found := c.vars.Get(name)
	if !found {
		return ps.fail("variable '" + name + "' not found")
	}
	return c.evalStatement(ps, recv, method, arg)
}

// parseValue evaluates:
//
//	value -> id | int | float | string | array
//
// Identifiers resolve to the named variable's current value, which is what
// makes variable-to-variable comparisons work.
func (c *Checker) parseValue(ps *parseState) (Value, bool) {
	ps.tok = ps.lex.NextToken()

	switch ps.tok.Type {
	case token.INT:
		return IntValue(ps.tok.Int), true

	case token.FLOAT:
		return FloatValue(ps.tok.Float), true

	case token.RAW_STRING_NO_ESCAPE:
		// no escape seen during lexing, the raw slice is the final value
		return StringValue(ps.tok.Text), true

	case token.RAW_STRING:
		return StringValue(unescape(ps.tok.Text)), true

	case token.UNTERMINATED_STRING:
		ps.fail("unterminated string")
		return Value{}, false

	case token.IDENT:
		v, found := c.vars.Get(ps.tok.Text)
		if !found {
			ps.fail("variable '" + ps.tok.Text + "' not found")
			return Value{}, false
		}
		return v, true

	case token.LBRACKET:
		return c.parseArray(ps)
	}

	ps.fail("expecting value")
	return Value{}, false
}

// parseArray evaluates:
//
//	array -> '[' value (',' value)* ']'
//
// Elements may be heterogeneous, and nothing structurally forbids nested
// arrays. The opening bracket has already been consumed.
func (c *Checker) parseArray(ps *parseState) (Value, bool) {
	arr := Value{Type: TypeArray}

	if ps.lex.PeekToken().Type == token.RBRACKET {
		ps.tok = ps.lex.NextToken()
		return arr, true
	}

	for {
		el, ok := c.parseValue(ps)
		if !ok {
			return Value{}, false
		}
		arr.Array = append(arr.Array, el)

		ps.tok = ps.lex.NextToken()
		switch ps.tok.Type {
		case token.RBRACKET:
			return arr, true
		case token.COMMA:
			// next element
		case token.EOF:
			ps.fail("expecting ']'")
			return Value{}, false
		default:
			ps.fail("expecting ','")
			return Value{}, false
		}
	}
}

// evalStatement resolves the method and invokes it with the variable's
// value and the parsed argument. The operator's own error, if any, is
// surfaced unmodified.
func (c *Checker) evalStatement(ps *parseState, recv Value, method string, arg Value) bool {
	fn, found := c.methods.Get(method)
	if !found {
		return ps.fail("unknown method '" + method + "'")
	}

	result, err := fn(recv, arg)
	if err != nil {
		ps.err = err
		return false
	}
	ps.result = result
	return true
}

// unescape rewrites escape sequences in a single pass. It only runs when
// the lexer recorded a backslash in the string body. Unrecognized escapes
// drop the backslash and keep the following character as-is.
func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		i++
		if i >= len(s) {
			break // trailing backslash, nothing follows
		}
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '0':
			out = append(out, 0)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
