// Package rulefile loads rule-suite definitions from YAML. A suite binds a
// set of typed variables and lists the expressions to evaluate against
// them, optionally with expected outcomes so a suite file doubles as a
// regression test.
package rulefile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rulewise/rulekit/pkg/rulekit"
)

// Suite is the top-level document of a rule-suite file.
type Suite struct {
	// Name identifies the suite in reports. Defaults to the file name when
	// the suite was loaded from disk.
	Name string `yaml:"name,omitempty"`

	// Vars binds variable names to values. YAML scalars map onto the
	// evaluator's types: integers become int variables, floating point
	// numbers become float variables, strings become string variables.
	Vars map[string]any `yaml:"vars,omitempty"`

	// Rules lists the expressions to evaluate, in order.
	Rules []Rule `yaml:"rules"`
}

// Rule is a single expression plus an optional expectation.
type Rule struct {
	// Name labels the rule in reports. Defaults to the expression itself.
	Name string `yaml:"name,omitempty"`

	// Expr is the rule expression, e.g. `a.gte(100) && c.contains("x")`.
	Expr string `yaml:"expr"`

	// Expect, when set, is the outcome the rule must produce. A rule
	// without an expectation passes as long as it evaluates cleanly.
	Expect *bool `yaml:"expect,omitempty"`
}

// Outcome records the evaluation of one rule.
type Outcome struct {
	Rule   Rule
	Result bool
	Err    error
}

// Passed reports whether the rule evaluated cleanly and, if it carried an
// expectation, matched it.
func (o Outcome) Passed() bool {
	if o.Err != nil {
		return false
	}
	return o.Rule.Expect == nil || *o.Rule.Expect == o.Result
}

// Load reads and parses a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return s, nil
}

// Parse decodes a suite document and validates it.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}
	if len(s.Rules) == 0 {
		return nil, fmt.Errorf("suite has no rules")
	}
	for i, r := range s.Rules {
		if r.Expr == "" {
			return nil, fmt.Errorf("rule %d has no expr", i)
		}
	}
	return &s, nil
}

// Bind registers the suite's variables on a checker. YAML decodes untagged
// scalars as int, float64 or string; anything else is rejected.
func (s *Suite) Bind(c *rulekit.Checker) error {
	for name, raw := range s.Vars {
		switch v := raw.(type) {
		case int:
			c.SetVarInt(name, int32(v))
		case int64:
			c.SetVarInt(name, int32(v))
		case float64:
			c.SetVarFloat(name, float32(v))
		case string:
			c.SetVarString(name, v)
		default:
			return fmt.Errorf("variable %q: unsupported type %T", name, raw)
		}
	}
	return nil
}

// Run evaluates every rule against a fresh checker bound to the suite's
// variables and returns one outcome per rule.
func (s *Suite) Run() ([]Outcome, error) {
	c := rulekit.New()
	if err := s.Bind(c); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(s.Rules))
	for _, r := range s.Rules {
		result, err := c.Eval(r.Expr)
		outcomes = append(outcomes, Outcome{Rule: r, Result: result, Err: err})
	}
	return outcomes, nil
}
