package rulekit

// Type tags a Value. The tag letters appear verbatim in error messages
// ("type mismatch: type i vs f"), so they are part of the observable
// contract, not an internal detail.
type Type byte

const (
	TypeInt    Type = 'i'
	TypeFloat  Type = 'f'
	TypeString Type = 's'
	TypeArray  Type = 'a'
)

// Value is the tagged union flowing through rule evaluation: variables,
// literals and array elements are all Values. Only the field matching Type
// is meaningful. Values are immutable once constructed; rebinding a
// variable replaces its Value wholesale.
type Value struct {
	Type  Type
	Int   int32
	Float float32
	Str   string
	Array []Value
}

func IntValue(v int32) Value {
	return Value{Type: TypeInt, Int: v}
}

func FloatValue(v float32) Value {
	return Value{Type: TypeFloat, Float: v}
}

func StringValue(v string) Value {
	return Value{Type: TypeString, Str: v}
}

func ArrayValue(elems ...Value) Value {
	return Value{Type: TypeArray, Array: elems}
}
