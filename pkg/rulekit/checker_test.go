package rulekit_test

import (
	"errors"
	"testing"

	"github.com/rulewise/rulekit/pkg/rulekit"
)

// newChecker builds the fixture shared by most tests: a=100 (int),
// b=2.0 (float), c="my string".
func newChecker() *rulekit.Checker {
	c := rulekit.New()
	c.SetVarInt("a", 100)
	c.SetVarFloat("b", 2.0)
	c.SetVarString("c", "my string")
	return c
}

func TestEval(t *testing.T) {
	testCases := []struct {
		name string
		expr string
		want bool
	}{
		{"int_eq", "a.eq(100)", true},
		{"int_eq_miss", "a.eq(101)", false},
		{"int_eq_big_literal", "a.eq(1234551234)", false},
		{"int_neq", "a.neq(100)", false},
		{"int_neq_hit", "a.neq(101)", true},
		{"int_lt", "a.lt(100)", false},
		{"int_lt_hit", "a.lt(101)", true},
		{"int_lte_eq", "a.lte(100)", true},
		{"int_lte_miss", "a.lte(99)", false},
		{"int_gt", "a.gt(100)", false},
		{"int_gt_hit", "a.gt(99)", true},
		{"int_gte_eq", "a.gte(100)", true},
		{"int_gte_miss", "a.gte(101)", false},
		{"not", "!a.gte(99)", false},
		{"double_not", "!!a.gte(99)", true},
		{"not_binds_to_statement", "!a.gte(99) || a.eq(100)", true},
		{"float_eq", "b.eq(2.0)", true},
		{"float_eq_close_miss", "b.eq(1.9999999)", false},
		{"string_eq", `c.eq("my string")`, true},
		{"string_single_quotes", "c.eq('my string')", true},
		{"contains", `c.contains("string")`, true},
		{"contains_miss", `c.contains("stringo")`, false},
		{"in_string_miss", `c.in("string")`, false},
		{"in_string", `c.in("this is my string example")`, true},
		{"group", "(a.gte(100))", true},
		{"group_and", "(a.gte(100) && a.gt(99))", true},
		{"and", "a.gte(100) && a.gt(99)", true},
		{"or_short_left", "a.eq(100) || a.eq(0)", true},
		{"or_right", "a.eq(0) || a.eq(100)", true},
		{"and_or_chain", "a.eq(100) && a.eq(0) || a.eq(100)", true},
		{"escape_sequences", `c.neq("my\nstring")`, true},
		{"unknown_escape_drops_backslash", `c.eq("my\ string")`, true},
		{"in_array_int", "a.in([99, 100, 200])", true},
		{"in_array_int_miss", "a.in([1, 2, 3])", false},
		{"in_array_heterogeneous", `a.in(['100', 100])`, true},
		{"in_array_type_must_match", `a.in(['100'])`, false},
		{"in_array_string", `c.in(["my string", "other"])`, true},
		{"in_array_float", "b.in([1.5, 2.0])", true},
		{"empty_array", "a.in([])", false},
		{"var_to_var", "a.eq(a)", true},
		{"whitespace_everywhere", "\na\t.\n eq\t(\t100\t)\r", true},
	}

	c := newChecker()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Eval(tc.expr)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tc.expr, err)
			}
			if got != tc.want {
				t.Errorf("Eval(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	testCases := []struct {
		name string
		expr string
		want string
	}{
		{"empty", "", "expecting expression"},
		{"only_spaces", "   \t", "expecting expression"},
		{"dangling_and", "a.eq(2) &&", "expecting expression"},
		{"dangling_or", "a.eq(2) ||", "expecting expression"},
		{"type_mismatch_int_float", "a.eq(2.00)", "type mismatch: type i vs f"},
		{"type_mismatch_float_string", "b.eq('x')", "type mismatch: type f vs s"},
		{"unterminated_single", "a.eq('", "unterminated string"},
		{"unterminated_double", `a.eq("`, "unterminated string"},
		{"unknown_variable_before_method", "j.k(2.7)", "variable 'j' not found"},
		{"unknown_variable_as_value", "a.eq(nosuch)", "variable 'nosuch' not found"},
		{"unknown_method", "a.foo(1)", "unknown method 'foo'"},
		{"missing_dot", "a eq(1)", "expecting '.'"},
		{"missing_method_name", "a.(1)", "expecting identifier"},
		{"leading_dot", ".eq(1)", "expecting identifier"},
		{"missing_lparen", "a.eq 1", "expecting '('"},
		{"missing_rparen", "a.eq(1", "expecting ')'"},
		{"unclosed_group", "(a.eq(100)", "expecting ')'"},
		{"bad_value", "a.eq(])", "expecting value"},
		{"unclosed_array", "a.in([1, 2", "expecting ']'"},
		{"array_missing_comma", "a.in([1 2])", "expecting ','"},
		{"trailing_token", "a.eq(100) a", "unexpected token 'a'"},
		{"trailing_rparen", "a.eq(100))", "unexpected token ')'"},
		{"unsupported_contains", "a.contains(1)", "unsupported operation 'contains' with type 'i'"},
		{"unsupported_in", "a.in(1)", "unsupported operation 'in' with type 'i'"},
		{"not_on_group", "!(a.eq(100))", "expecting identifier"},
		{"bang_alone", "!", "expecting statement"},
	}

	c := newChecker()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Eval(tc.expr)
			if err == nil {
				t.Fatalf("Eval(%q): expected error %q, got none", tc.expr, tc.want)
			}
			if err.Error() != tc.want {
				t.Errorf("Eval(%q) error = %q, want %q", tc.expr, err.Error(), tc.want)
			}
		})
	}
}

// Mixed && and || chains group to the right with no precedence between the
// two operators; only parentheses force left grouping. With A=false,
// B=true, C=true the two groupings disagree, which is what makes the case
// discriminating.
func TestRightAssociativeBoolops(t *testing.T) {
	c := rulekit.New()
	c.SetVarInt("x", 1)

	const (
		A = "x.eq(0)" // false
		B = "x.eq(1)" // true
		C = "x.eq(1)" // true
	)

	ungrouped, err := c.Eval(A + " && " + B + " || " + C)
	if err != nil {
		t.Fatal(err)
	}
	if ungrouped != false {
		t.Errorf("A && B || C = %v, want false (parses as A && (B || C))", ungrouped)
	}

	grouped, err := c.Eval("(" + A + " && " + B + ") || " + C)
	if err != nil {
		t.Fatal(err)
	}
	if grouped != true {
		t.Errorf("(A && B) || C = %v, want true", grouped)
	}
}

// Both operands of && and || are always parsed and evaluated, so a
// side-effecting method on the right side runs even when the left side
// already decides the outcome.
func TestBothSidesAlwaysEvaluated(t *testing.T) {
	c := rulekit.New()
	c.SetVarInt("x", 1)

	calls := 0
	c.SetMethod("spy", func(lhs, rhs rulekit.Value) (bool, error) {
		calls++
		return false, nil
	})

	got, err := c.Eval("x.eq(1) || x.spy(0)")
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("x.eq(1) || x.spy(0) = false, want true")
	}
	if calls != 1 {
		t.Errorf("right side evaluated %d times, want 1", calls)
	}

	calls = 0
	got, err = c.Eval("x.eq(2) && x.spy(0)")
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("x.eq(2) && x.spy(0) = true, want false")
	}
	if calls != 1 {
		t.Errorf("right side evaluated %d times, want 1", calls)
	}
}

// A right-side error surfaces even when the left side already determined
// the boolean outcome.
func TestRightSideErrorSurfaces(t *testing.T) {
	c := rulekit.New()
	c.SetVarInt("x", 1)

	_, err := c.Eval("x.eq(1) || x.eq(1.5)")
	if err == nil || err.Error() != "type mismatch: type i vs f" {
		t.Fatalf("got %v, want type mismatch error", err)
	}
}

func TestEvalIsDeterministic(t *testing.T) {
	c := newChecker()
	const expr = `a.gte(100) && c.contains("string")`

	first, err := c.Eval(expr)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := c.Eval(expr)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("run %d: got %v, want %v", i, got, first)
		}
	}
}

func TestVariableRebinding(t *testing.T) {
	c := rulekit.New()

	c.SetVarInt("a", 1)
	if got, _ := c.Eval("a.eq(1)"); !got {
		t.Fatal("a.eq(1) = false before rebinding")
	}

	c.SetVarInt("a", 100)
	if got, _ := c.Eval("a.eq(100)"); !got {
		t.Fatal("a.eq(100) = false after rebinding")
	}
	if got, _ := c.Eval("a.eq(1)"); got {
		t.Fatal("a.eq(1) = true after rebinding")
	}
}

func TestClearVars(t *testing.T) {
	c := newChecker()
	c.ClearVars()

	_, err := c.Eval("a.eq(100)")
	if err == nil || err.Error() != "variable 'a' not found" {
		t.Fatalf("got %v, want variable 'a' not found", err)
	}
}

func TestClearAndInitMethods(t *testing.T) {
	c := newChecker()

	c.ClearMethods()
	_, err := c.Eval("a.eq(100)")
	if err == nil || err.Error() != "unknown method 'eq'" {
		t.Fatalf("after ClearMethods: got %v, want unknown method 'eq'", err)
	}

	c.InitMethods()
	got, err := c.Eval("a.eq(100)")
	if err != nil {
		t.Fatalf("after InitMethods: %v", err)
	}
	if !got {
		t.Fatal("after InitMethods: a.eq(100) = false, want true")
	}
}

func TestWithoutBuiltins(t *testing.T) {
	c := rulekit.New(rulekit.WithoutBuiltins())
	c.SetVarInt("a", 1)

	_, err := c.Eval("a.eq(1)")
	if err == nil || err.Error() != "unknown method 'eq'" {
		t.Fatalf("got %v, want unknown method 'eq'", err)
	}
}

func TestCustomMethodOverridesBuiltin(t *testing.T) {
	c := rulekit.New()
	c.SetVarInt("a", 1)

	// replacement inverts the built-in
	c.SetMethod("eq", func(lhs, rhs rulekit.Value) (bool, error) {
		return lhs.Int != rhs.Int, nil
	})

	got, err := c.Eval("a.eq(1)")
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Fatal("overridden eq still behaves like the built-in")
	}
}

func TestCustomMethodErrorSurfacesVerbatim(t *testing.T) {
	c := rulekit.New()
	c.SetVarInt("a", 1)

	want := errors.New("candles are not comparable")
	c.SetMethod("weird", func(lhs, rhs rulekit.Value) (bool, error) {
		return false, want
	})

	_, err := c.Eval("a.weird(1)")
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
}

func BenchmarkEval(b *testing.B) {
	c := rulekit.New()
	c.SetVarInt("myint", 1)
	c.SetVarFloat("myfloat", 2.0)
	c.SetVarString("mystr", "my string")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Eval("myfloat.eq(1.9999999) || myint.eq(32)"); err != nil {
			b.Fatal(err)
		}
	}
}

func TestSetVarArray(t *testing.T) {
	c := rulekit.New()
	c.SetVarInt("a", 2)
	c.SetVar("allowed", rulekit.ArrayValue(
		rulekit.IntValue(1),
		rulekit.IntValue(2),
		rulekit.IntValue(3),
	))

	got, err := c.Eval("a.in(allowed)")
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("a.in(allowed) = false, want true")
	}

	// array receivers reach the method too; ordering methods reject them
	_, err = c.Eval("allowed.gt(allowed)")
	if err == nil || err.Error() != "unsupported operation 'gt' with type 'a'" {
		t.Fatalf("got %v, want unsupported operation 'gt' with type 'a'", err)
	}
}
