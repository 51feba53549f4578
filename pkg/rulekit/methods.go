package rulekit

import (
	"fmt"
	"strings"
)

// MethodFn is a named comparison operator: a pure function over two Values
// producing a boolean or an error. Built-in and caller-supplied methods are
// the same kind of thing; registering a method under an existing name fully
// overrides it. Type compatibility is enforced by each operator, not by the
// evaluator.
type MethodFn func(lhs, rhs Value) (bool, error)

func errTypeMismatch(a, b Type) error {
	return fmt.Errorf("type mismatch: type %c vs %c", a, b)
}

func errUnsupported(name string, t Type) error {
	return fmt.Errorf("unsupported operation '%s' with type '%c'", name, t)
}

// InitMethods registers the built-in comparison methods, overriding any
// methods already registered under the same names.
func (c *Checker) InitMethods() {
	c.SetMethod("eq", methodEq)
	c.SetMethod("neq", methodNeq)
	c.SetMethod("gt", methodGt)
	c.SetMethod("gte", methodGte)
	c.SetMethod("lt", methodLt)
	c.SetMethod("lte", methodLte)
	c.SetMethod("contains", methodContains)
	c.SetMethod("in", methodIn)
}

func methodEq(lhs, rhs Value) (bool, error) {
	if lhs.Type != rhs.Type {
		return false, errTypeMismatch(lhs.Type, rhs.Type)
	}
	switch lhs.Type {
	case TypeInt:
		return lhs.Int == rhs.Int, nil
	case TypeFloat:
		return lhs.Float == rhs.Float, nil
	case TypeString:
		return lhs.Str == rhs.Str, nil
	}
	return false, errUnsupported("eq", lhs.Type)
}

func methodNeq(lhs, rhs Value) (bool, error) {
	if lhs.Type != rhs.Type {
		return false, errTypeMismatch(lhs.Type, rhs.Type)
	}
	switch lhs.Type {
	case TypeInt:
		return lhs.Int != rhs.Int, nil
	case TypeFloat:
		return lhs.Float != rhs.Float, nil
	case TypeString:
		return lhs.Str != rhs.Str, nil
	}
	return false, errUnsupported("neq", lhs.Type)
}

func methodGt(lhs, rhs Value) (bool, error) {
	if lhs.Type != rhs.Type {
		return false, errTypeMismatch(lhs.Type, rhs.Type)
	}
	switch lhs.Type {
	case TypeInt:
		return lhs.Int > rhs.Int, nil
	case TypeFloat:
		return lhs.Float > rhs.Float, nil
	case TypeString:
		return lhs.Str > rhs.Str, nil
	}
	return false, errUnsupported("gt", lhs.Type)
}

func methodGte(lhs, rhs Value) (bool, error) {
	if lhs.Type != rhs.Type {
		return false, errTypeMismatch(lhs.Type, rhs.Type)
	}
	switch lhs.Type {
	case TypeInt:
		return lhs.Int >= rhs.Int, nil
	case TypeFloat:
		return lhs.Float >= rhs.Float, nil
	case TypeString:
		return lhs.Str >= rhs.Str, nil
	}
	return false, errUnsupported("gte", lhs.Type)
}

func methodLt(lhs, rhs Value) (bool, error) {
	if lhs.Type != rhs.Type {
		return false, errTypeMismatch(lhs.Type, rhs.Type)
	}
	switch lhs.Type {
	case TypeInt:
		return lhs.Int < rhs.Int, nil
	case TypeFloat:
		return lhs.Float < rhs.Float, nil
	case TypeString:
		return lhs.Str < rhs.Str, nil
	}
	return false, errUnsupported("lt", lhs.Type)
}

func methodLte(lhs, rhs Value) (bool, error) {
	if lhs.Type != rhs.Type {
		return false, errTypeMismatch(lhs.Type, rhs.Type)
	}
	switch lhs.Type {
	case TypeInt:
		return lhs.Int <= rhs.Int, nil
	case TypeFloat:
		return lhs.Float <= rhs.Float, nil
	case TypeString:
		return lhs.Str <= rhs.Str, nil
	}
	return false, errUnsupported("lte", lhs.Type)
}

// methodContains searches rhs as a substring of lhs. Only the left side's
// type is checked.
func methodContains(lhs, rhs Value) (bool, error) {
	if lhs.Type != TypeString {
		return false, errUnsupported("contains", lhs.Type)
	}
	return strings.Contains(lhs.Str, rhs.Str), nil
}

// methodIn searches lhs inside rhs: as a substring when rhs is a string, or
// by element-wise type and value match when rhs is an array.
func methodIn(lhs, rhs Value) (bool, error) {
	switch rhs.Type {
	case TypeString:
		return strings.Contains(rhs.Str, lhs.Str), nil
	case TypeArray:
		for _, el := range rhs.Array {
			if el.Type != lhs.Type {
				continue
			}
			switch lhs.Type {
			case TypeInt:
				if lhs.Int == el.Int {
					return true, nil
				}
			case TypeFloat:
				if lhs.Float == el.Float {
					return true, nil
				}
			case TypeString:
				if lhs.Str == el.Str {
					return true, nil
				}
			}
		}
		return false, nil
	}
	return false, errUnsupported("in", rhs.Type)
}
