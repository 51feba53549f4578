package lexer

import "github.com/rulewise/rulekit/internal/token"

// firstClass maps the first byte of a token to its kind; identClass marks
// the bytes that may continue an identifier. Both tables are built once at
// startup and are read-only afterwards.
var (
	firstClass [256]token.Type
	identClass [256]bool
)

func init() {
	for i := range firstClass {
		firstClass[i] = token.UNKNOWN
	}
	firstClass[0] = token.EOF
	for _, c := range []byte{'\t', '\n', '\v', '\f', '\r', ' '} {
		firstClass[c] = token.SPACE
	}
	for c := byte('a'); c <= 'z'; c++ {
		firstClass[c] = token.IDENT
	}
	for c := byte('A'); c <= 'Z'; c++ {
		firstClass[c] = token.IDENT
	}
	firstClass['_'] = token.IDENT
	for c := byte('0'); c <= '9'; c++ {
		firstClass[c] = token.INT
	}
	firstClass['-'] = token.INT
	firstClass['+'] = token.INT
	firstClass['"'] = token.RAW_STRING
	firstClass['\''] = token.RAW_STRING
	firstClass['&'] = token.AND
	firstClass['|'] = token.OR
	firstClass['!'] = token.NOT
	firstClass['.'] = token.DOT
	firstClass['('] = token.LPAREN
	firstClass[')'] = token.RPAREN
	firstClass['['] = token.LBRACKET
	firstClass[']'] = token.RBRACKET
	firstClass[','] = token.COMMA

	for c := byte('a'); c <= 'z'; c++ {
		identClass[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		identClass[c] = true
	}
	for c := byte('0'); c <= '9'; c++ {
		identClass[c] = true
	}
	identClass['_'] = true
}

// Lexer walks a rule expression one token at a time. It never materializes
// a token list: NextToken advances a cursor over the input and PeekToken
// looks ahead without consuming.
type Lexer struct {
	input string
	pos   int
}

func New(input string) *Lexer {
	return &Lexer{input: input}
}

// PeekToken returns the next token without advancing the cursor. Repeated
// peeks return the same token.
func (l *Lexer) PeekToken() token.Token {
	save := l.pos
	t := l.NextToken()
	l.pos = save
	return t
}

// NextToken skips whitespace, then classifies and consumes one token. At
// end of input it returns an EOF token and the cursor stays put.
func (l *Lexer) NextToken() token.Token {
	for l.pos < len(l.input) && firstClass[l.input[l.pos]] == token.SPACE {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF}
	}

	start := l.pos
	c := l.input[l.pos]

	switch firstClass[c] {
	case token.IDENT:
		l.pos++
		for l.pos < len(l.input) && identClass[l.input[l.pos]] {
			l.pos++
		}
		return token.Token{Type: token.IDENT, Text: l.input[start:l.pos]}

	case token.INT:
		return l.number()

	case token.RAW_STRING:
		return l.quoted(c)

	case token.AND:
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '&' {
			l.pos += 2
			return token.Token{Type: token.AND, Text: l.input[start:l.pos]}
		}
		l.pos++
		return token.Token{Type: token.UNKNOWN, Text: l.input[start:l.pos]}

	case token.OR:
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '|' {
			l.pos += 2
			return token.Token{Type: token.OR, Text: l.input[start:l.pos]}
		}
		l.pos++
		return token.Token{Type: token.UNKNOWN, Text: l.input[start:l.pos]}

	case token.NOT, token.DOT, token.LPAREN, token.RPAREN,
		token.LBRACKET, token.RBRACKET, token.COMMA:
		l.pos++
		return token.Token{Type: firstClass[c], Text: l.input[start:l.pos]}

	case token.EOF:
		// a NUL byte in the middle of the input ends the stream
		return token.Token{Type: token.EOF}

	default:
		l.pos++
		return token.Token{Type: token.UNKNOWN, Text: l.input[start:l.pos]}
	}
}

// number accumulates an integer digit by digit, applying the sign at the
// end. If a '.' follows, the token becomes a float: the fractional digits
// are accumulated and divided by the matching power of ten, then added to
// the integer part. The numeric value is final when the token is returned.
func (l *Lexer) number() token.Token {
	start := l.pos
	c := l.input[l.pos]
	negative := c == '-'

	var n int32
	if c >= '0' && c <= '9' {
		n = int32(c - '0')
	}
	l.pos++ // first digit or sign

	for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
		n = n*10 + int32(l.input[l.pos]-'0')
		l.pos++
	}
	if negative {
		n = -n
	}

	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		var fraction, divisor float32 = 0, 1
		for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
			fraction = fraction*10 + float32(l.input[l.pos]-'0')
			divisor *= 10
			l.pos++
		}
		return token.Token{
			Type:  token.FLOAT,
			Text:  l.input[start:l.pos],
			Float: float32(n) + fraction/divisor,
		}
	}

	return token.Token{Type: token.INT, Text: l.input[start:l.pos], Int: n}
}

// quoted scans a string delimited by quote. The body is taken verbatim; a
// backslash marks the following character as escaped and is recorded in the
// token kind so the parser can unescape lazily. Reaching end of input before
// the closing delimiter yields an UNTERMINATED_STRING token.
func (l *Lexer) quoted(quote byte) token.Token {
	l.pos++ // opening quote
	body := l.pos
	escaped := false

	for l.pos < len(l.input) && l.input[l.pos] != quote {
		if l.input[l.pos] == '\\' {
			escaped = true
			l.pos++ // skip the escaped character, whatever it is
		}
		l.pos++
	}
	if l.pos > len(l.input) {
		l.pos = len(l.input)
	}

	if l.pos < len(l.input) {
		t := token.Token{Type: token.RAW_STRING_NO_ESCAPE, Text: l.input[body:l.pos]}
		if escaped {
			t.Type = token.RAW_STRING
		}
		l.pos++ // closing quote
		return t
	}
	return token.Token{Type: token.UNTERMINATED_STRING, Text: l.input[body:l.pos]}
}
