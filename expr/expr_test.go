package expr

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/kbukum/comprehend/comprehension"
	"github.com/kbukum/comprehend/definition"
	"github.com/kbukum/comprehend/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustParse(t *testing.T, doc string) *definition.Definition {
	t.Helper()
	d, err := definition.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func run(t *testing.T, d *definition.Definition) []any {
	t.Helper()
	c, err := Compile(d)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return got
}

func ints(vs ...int64) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func TestBundledExamples(t *testing.T) {
	cube := make([]any, 0, 27)
	for i := range int64(3) {
		for j := range int64(3) {
			for k := range int64(3) {
				cube = append(cube, ints(i, j, k))
			}
		}
	}
	tests := map[string][]any{
		"identity": ints(0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
		"squares":  ints(0, 1, 4, 9, 16, 25, 36, 49, 64, 81),
		"scaled":   ints(0, 10, 20, 30, 40, 50, 60, 70, 80, 90),
		"negated":  ints(10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0),
		"products": ints(1, 2, 3, 2, 4, 6, 3, 6, 9),
		"needle":   ints(1998),
		"cross": {
			ints(4, 1), ints(4, 3), ints(4, 3), ints(4, 7),
			ints(2, 1), ints(2, 3), ints(2, 3), ints(2, 7),
		},
		"empty-outer": {},
		"triangle": {
			ints(1, 1), ints(2, 1), ints(2, 2), ints(3, 1), ints(3, 2), ints(3, 3),
		},
		"cube": cube,
		"pythagorean": {
			ints(3, 4, 5), ints(6, 8, 10), ints(5, 12, 13), ints(9, 12, 15), ints(8, 15, 17),
		},
	}

	loader := definition.NewFileLoader(filepath.Join("..", "examples"))
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := loader.Load(name)
			if err != nil {
				t.Fatal(err)
			}
			got := run(t, d)
			if got == nil {
				got = []any{}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_AuthoringErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.ErrorCode
	}{
		{"unbound in yield", `
name: x
yield: i + z
clauses: [{var: i, in: "range(3)"}]`, errors.ErrCodeUnboundBinder},
		{"unbound in generator", `
name: x
yield: i
clauses: [{var: i, in: "range(n)"}]`, errors.ErrCodeUnboundBinder},
		{"forward reference", `
name: x
yield: i
clauses: [{var: i, in: "range(j)"}, {var: j, in: "range(3)"}]`, errors.ErrCodeForwardReference},
		{"self reference", `
name: x
yield: i
clauses: [{var: i, in: "range(i)"}]`, errors.ErrCodeForwardReference},
		{"predicate reads later binder", `
name: x
yield: i
clauses: [{var: i, in: "range(3)", if: ["i < j"]}, {var: j, in: "range(3)"}]`, errors.ErrCodeForwardReference},
		{"syntax error", `
name: x
yield: "i +"
clauses: [{var: i, in: "range(3)"}]`, errors.ErrCodeInvalidExpression},
		{"non-bool predicate", `
name: x
yield: i
clauses: [{var: i, in: "range(3)", if: ["'yes'"]}]`, errors.ErrCodeInvalidExpression},
		{"non-collection generator", `
name: x
yield: i
clauses: [{var: i, in: "42"}]`, errors.ErrCodeInvalidExpression},
		{"no such function", `
name: x
yield: i
clauses: [{var: i, in: "range(1, 2, 3)"}]`, errors.ErrCodeInvalidExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(mustParse(t, tt.doc))
			if c != nil {
				t.Error("expected no comprehension")
			}
			if !errors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestCompile_ForwardReferenceNamesBinder(t *testing.T) {
	d := mustParse(t, `
name: x
yield: i
clauses: [{var: i, in: "range(k)"}, {var: j, in: "range(3)"}, {var: k, in: "range(3)"}]`)
	_, err := Compile(d)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeForwardReference {
		t.Fatalf("expected FORWARD_REFERENCE, got %v", err)
	}
	if appErr.Details["binder"] != "k" || appErr.Details["location"] != "clauses[0].in" || appErr.Details["defined_at"] != 3 {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}

func TestCompile_RejectsInvalidDefinition(t *testing.T) {
	d := &definition.Definition{Name: "x", Yield: "i"}
	if _, err := Compile(d); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []any
	}{
		{"division by zero", `
name: div
yield: 10 / (2 - i)
clauses: [{var: i, in: "range(5)"}]`, ints(5, 10)},
		{"predicate not bool", `
name: pred
yield: i
clauses: [{var: i, in: "range(3)", if: ["i"]}]`, nil},
		{"generator not a collection", `
name: gen
yield: j
clauses: [{var: i, in: "range(2)"}, {var: j, in: "i"}]`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(mustParse(t, tt.doc))
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := c.Collect(context.Background())
			var evalErr *EvalError
			if !stderrors.As(err, &evalErr) {
				t.Fatalf("expected *EvalError, got %v", err)
			}
			if evalErr.Definition != c.Name() || evalErr.Tuple == "" {
				t.Errorf("incomplete error %+v", evalErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("results before failure (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectionSources(t *testing.T) {
	d := mustParse(t, `
name: sources
params:
  words: [b, a]
yield: "[w, v, k]"
clauses:
  - var: w
    in: words
  - var: v
    in: "[1, 'x', true, 2.5]"
    if: ["type(v) != bool"]
  - var: k
    in: "{'z': 1, 'y': 2}"
    if: ["w == 'a' || k == 'y'"]
`)
	got := run(t, d)
	want := []any{
		[]any{"b", int64(1), "y"},
		[]any{"b", "x", "y"},
		[]any{"b", 2.5, "y"},
		[]any{"a", int64(1), "y"},
		[]any{"a", int64(1), "z"},
		[]any{"a", "x", "y"},
		[]any{"a", "x", "z"},
		[]any{"a", 2.5, "y"},
		[]any{"a", 2.5, "z"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestYieldShapes(t *testing.T) {
	d := mustParse(t, `
name: shapes
params: {label: pt}
yield: "{'label': label, 'x': x, 'ok': x in range(2), 'none': null}"
clauses: [{var: x, in: "range(1, 3)"}]
`)
	got := run(t, d)
	want := []any{
		map[string]any{"label": "pt", "x": int64(1), "ok": true, "none": nil},
		map[string]any{"label": "pt", "x": int64(2), "ok": false, "none": nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeInsideExpressions(t *testing.T) {
	d := mustParse(t, `
name: ranges
yield: "[size(range(n)), range(n).map(x, x * 2), range(1, n) + [9], range(n)[1]]"
clauses: [{var: n, in: "[3]"}]
`)
	got := run(t, d)
	want := []any{[]any{int64(3), ints(0, 2, 4), ints(1, 2, 9), int64(1)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeTooLarge(t *testing.T) {
	for _, yield := range []string{
		"size(range(-9223372036854775807, 9223372036854775807))",
		"range(-9223372036854775807, 9223372036854775807) + [1]",
	} {
		d := mustParse(t, "name: wide\nyield: \""+yield+"\"\nclauses: [{var: n, in: \"[0]\"}]\n")
		c, err := Compile(d)
		if err != nil {
			t.Fatalf("Compile(%s): %v", yield, err)
		}
		got, err := c.Collect(context.Background())
		var evalErr *EvalError
		if !stderrors.As(err, &evalErr) {
			t.Fatalf("%s: expected *EvalError, got %v (results %v)", yield, err, got)
		}
		if len(got) != 0 {
			t.Errorf("%s: unexpected results %v", yield, got)
		}
	}
}

func TestLazyPull(t *testing.T) {
	d := mustParse(t, `
name: huge
yield: "[i, j]"
clauses:
  - var: i
    in: "range(1000000000)"
  - var: j
    in: "range(1000000000)"
    if: ["j > i"]
`)
	c, err := Compile(d)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	it := c.Iter(ctx)
	defer it.Close()
	for _, want := range [][]any{ints(0, 1), ints(0, 2)} {
		got, ok, err := it.Next(ctx)
		if err != nil || !ok {
			t.Fatalf("Next: ok=%v err=%v", ok, err)
		}
		if diff := cmp.Diff(any(want), got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	c, err := Compile(mustParse(t, "name: x\nyield: i\nclauses: [{var: i, in: 'range(3)'}]"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Collect(ctx); !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCompile_ForwardsOptions(t *testing.T) {
	tally := comprehension.NewTally()
	d := mustParse(t, `
name: tallied
yield: i
clauses: [{var: i, in: "range(4)", if: ["i % 2 == 0"]}]
`)
	c, err := Compile(d, comprehension.WithObserver(tally))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "tallied" {
		t.Errorf("name = %q", c.Name())
	}
	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if tally.Candidates["i"] != 4 || tally.Dropped["i"] != 2 || tally.Results != 2 {
		t.Errorf("unexpected tally %+v", tally)
	}
}
