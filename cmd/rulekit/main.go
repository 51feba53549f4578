package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/oarkflow/log"

	"github.com/rulewise/rulekit/internal/lexer"
	"github.com/rulewise/rulekit/internal/rulefile"
	"github.com/rulewise/rulekit/internal/token"
	"github.com/rulewise/rulekit/pkg/rulekit"
)

// iterationsEnv overrides the benchmark iteration count.
const iterationsEnv = "RULEKIT_ITERATIONS"

const defaultIterations = 1_000_000

// defaultBenchExpr exercises a float miss, an || and an int miss, so the
// full expression is parsed and evaluated every iteration.
const defaultBenchExpr = "myfloat.eq(1.9999999) || myint.eq(32)"

var logger = &log.DefaultLogger

var useColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(runCheck(os.Args[2:]))
	case "eval":
		os.Exit(runEval(os.Args[2:]))
	case "bench":
		os.Exit(runBench(os.Args[2:]))
	case "tokens":
		os.Exit(runTokens(os.Args[2:]))
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `rulekit - boolean rule expression evaluator

Usage:
  rulekit check <suite.yaml> [...]     run rule suites, exit non-zero on failure
  rulekit eval <expr> [name=value...]  evaluate one expression against variables
  rulekit bench [expr]                 measure evaluation throughput
  rulekit tokens <expr>                dump the token stream of an expression

Variables for eval are typed by their literal: integers become int
variables, numbers with a decimal point become float variables, everything
else is a string. `+iterationsEnv+` overrides the bench iteration count.`)
}

func green(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[32m" + s + "\x1b[0m"
}

func red(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func runCheck(paths []string) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "check: no suite files given")
		return 2
	}

	failed := 0
	for _, path := range paths {
		suite, err := rulefile.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		outcomes, err := suite.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 2
		}

		fmt.Printf("suite %s\n", suite.Name)
		for _, o := range outcomes {
			name := o.Rule.Name
			if name == "" {
				name = o.Rule.Expr
			}
			switch {
			case o.Err != nil:
				failed++
				fmt.Printf("  %s %s: %v\n", red("FAIL"), name, o.Err)
			case !o.Passed():
				failed++
				fmt.Printf("  %s %s: got %v, want %v\n", red("FAIL"), name, o.Result, *o.Rule.Expect)
			default:
				fmt.Printf("  %s %s: %v\n", green("PASS"), name, o.Result)
			}
		}
	}

	if failed > 0 {
		fmt.Printf("%s (%d rule(s))\n", red("FAIL"), failed)
		return 1
	}
	fmt.Println(green("PASS"))
	return 0
}

func runEval(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "eval: no expression given")
		return 2
	}

	checker := rulekit.New()
	for _, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "eval: variable %q is not name=value\n", arg)
			return 2
		}
		bindVar(checker, name, value)
	}

	result, err := checker.Eval(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(result)
	if result {
		return 0
	}
	return 1
}

// bindVar types a command-line variable by the shape of its literal.
func bindVar(c *rulekit.Checker, name, value string) {
	if i, err := strconv.ParseInt(value, 10, 32); err == nil {
		c.SetVarInt(name, int32(i))
		return
	}
	if f, err := strconv.ParseFloat(value, 32); err == nil {
		c.SetVarFloat(name, float32(f))
		return
	}
	c.SetVarString(name, value)
}

func runBench(args []string) int {
	expr := defaultBenchExpr
	if len(args) > 0 {
		expr = args[0]
	}

	iterations := defaultIterations
	if env := os.Getenv(iterationsEnv); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "bench: invalid %s %q\n", iterationsEnv, env)
			return 2
		}
		iterations = n
	}

	checker := rulekit.New()
	checker.SetVarInt("myint", 1)
	checker.SetVarFloat("myfloat", 2.0)
	checker.SetVarString("mystr", "my string")

	// one warm-up evaluation to catch a broken expression before timing
	if _, err := checker.Eval(expr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	runID := uuid.NewString()
	logger.Info().
		Str("run", runID).
		Str("expr", expr).
		Int("iterations", iterations).
		Msg("benchmark starting")

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := checker.Eval(expr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	elapsed := time.Since(start)

	opsPerSec := float64(iterations) / elapsed.Seconds()
	fmt.Printf("%.3f M ops/sec  (%d in %.3f seconds)\n",
		opsPerSec/1e6, iterations, elapsed.Seconds())
	logger.Info().
		Str("run", runID).
		Int("iterations", iterations).
		Msgf("benchmark done in %s", elapsed)
	return 0
}

func runTokens(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "tokens: no expression given")
		return 2
	}

	lex := lexer.New(args[0])
	for {
		t := lex.NextToken()
		if t.Type == token.EOF {
			break
		}
		fmt.Printf("%-22s %s\n", t.Type, t)
	}
	return 0
}
