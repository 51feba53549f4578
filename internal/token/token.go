package token

import "strconv"

// Type classifies a token. Each kind is a single printable byte, which lets
// the lexer classification tables store a Type per input byte directly.
type Type byte

const (
	UNKNOWN Type = 'u'
	IDENT   Type = 'i'
	INT     Type = 'n'
	FLOAT   Type = 'f'

	// RAW_STRING is a quoted string whose body contains at least one
	// backslash escape; the parser unescapes it lazily. When no escape was
	// seen the lexer reports RAW_STRING_NO_ESCAPE and the raw slice is the
	// final string value already.
	RAW_STRING           Type = 's'
	RAW_STRING_NO_ESCAPE Type = 'S'
	UNTERMINATED_STRING  Type = 't'

	AND      Type = '&'
	OR       Type = '|'
	NOT      Type = '!'
	DOT      Type = '.'
	LPAREN   Type = '('
	RPAREN   Type = ')'
	LBRACKET Type = '['
	RBRACKET Type = ']'
	COMMA    Type = ','
	SPACE    Type = ' '
	EOF      Type = 'e'
)

var typeNames = map[Type]string{
	UNKNOWN:              "UNKNOWN",
	IDENT:                "IDENT",
	INT:                  "INT",
	FLOAT:                "FLOAT",
	RAW_STRING:           "RAW_STRING",
	RAW_STRING_NO_ESCAPE: "RAW_STRING_NO_ESCAPE",
	UNTERMINATED_STRING:  "UNTERMINATED_STRING",
	AND:                  "AND",
	OR:                   "OR",
	NOT:                  "NOT",
	DOT:                  "DOT",
	LPAREN:               "LPAREN",
	RPAREN:               "RPAREN",
	LBRACKET:             "LBRACKET",
	RBRACKET:             "RBRACKET",
	COMMA:                "COMMA",
	SPACE:                "SPACE",
	EOF:                  "EOF",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Type(" + strconv.Quote(string(byte(t))) + ")"
}

// Token is a classified span of the source expression. Text aliases the
// input; numeric kinds carry the value parsed during lexing so it is never
// re-parsed later.
type Token struct {
	Type  Type
	Text  string
	Int   int32
	Float float32
}

// String renders the token for diagnostics, e.g. the text of an
// "unexpected token" error or a token-stream dump.
func (t Token) String() string {
	switch t.Type {
	case INT:
		return strconv.FormatInt(int64(t.Int), 10)
	case FLOAT:
		return strconv.FormatFloat(float64(t.Float), 'f', -1, 32)
	case RAW_STRING, RAW_STRING_NO_ESCAPE:
		return "string '" + t.Text + "'"
	case UNTERMINATED_STRING:
		return "unterminated string (" + t.Text + ")"
	case EOF:
		return "EOF"
	default:
		return "'" + t.Text + "'"
	}
}
