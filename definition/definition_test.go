package definition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/comprehend/errors"
	"github.com/kbukum/comprehend/validation"
)

const pythagorean = `
name: pythagorean
description: right triangles
params: {limit: 20}
yield: "[a, b, c]"
clauses:
  - var: c
    in: "range(1, limit)"
  - var: b
    in: "range(1, c)"
  - var: a
    in: "range(1, b)"
    if: ["a*a + b*b == c*c"]
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(pythagorean))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Definition{
		Name:        "pythagorean",
		Description: "right triangles",
		Params:      map[string]any{"limit": 20},
		Yield:       "[a, b, c]",
		Clauses: []Clause{
			{Var: "c", In: "range(1, limit)"},
			{Var: "b", In: "range(1, c)"},
			{Var: "a", In: "range(1, b)", If: []string{"a*a + b*b == c*c"}},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, d.Binders()); diff != "" {
		t.Errorf("binders (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.ErrorCode
	}{
		{"not yaml", "name: [", errors.ErrCodeInvalidInput},
		{"unknown key", "name: x\nyield: i\nwhere: y\nclauses: [{var: i, in: xs}]", errors.ErrCodeInvalidInput},
		{"missing yield", "name: x\nclauses: [{var: i, in: xs}]", errors.ErrCodeInvalidInput},
		{"no clauses", "name: x\nyield: i\nclauses: []", errors.ErrCodeInvalidInput},
		{"bad binder", "name: x\nyield: i\nclauses: [{var: 1i, in: xs}]", errors.ErrCodeInvalidInput},
		{"bad param name", "name: x\nyield: i\nparams: {a-b: 1}\nclauses: [{var: i, in: xs}]", errors.ErrCodeInvalidInput},
		{"empty predicate", "name: x\nyield: i\nclauses: [{var: i, in: xs, if: ['']}]", errors.ErrCodeInvalidInput},
		{"duplicate binder", "name: x\nyield: i\nclauses: [{var: i, in: xs}, {var: i, in: xs}]", errors.ErrCodeDuplicateBinder},
		{"binder shadows param", "name: x\nyield: i\nparams: {i: 1}\nclauses: [{var: i, in: xs}]", errors.ErrCodeDuplicateBinder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.doc))
			if d != nil {
				t.Error("expected no definition")
			}
			if !errors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	d := &Definition{Clauses: []Clause{{Var: "i"}}}
	appErr, ok := errors.AsAppError(d.Validate())
	if !ok {
		t.Fatal("expected AppError")
	}
	want := []validation.FieldError{
		{Field: "name", Message: "is required"},
		{Field: "yield", Message: "is required"},
		{Field: "clauses[0].in", Message: "is required"},
	}
	if diff := cmp.Diff(want, appErr.Details["fields"]); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d, err := Parse([]byte(pythagorean))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, data)
	}
	if diff := cmp.Diff(d, again); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func doc(name string) string {
	return "name: " + name + "\nyield: i\nclauses: [{var: i, in: 'range(3)'}]\n"
}

func TestFileLoader(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "alpha.yaml"), doc("alpha"))
	writeFile(t, filepath.Join(first, "nested", "beta.yml"), doc("beta"))
	writeFile(t, filepath.Join(first, "nested", "deeper", "hidden.yaml"), doc("hidden"))
	writeFile(t, filepath.Join(second, "alpha.yaml"), doc("shadowed"))
	writeFile(t, filepath.Join(second, "gamma.yaml"), doc("gamma"))
	writeFile(t, filepath.Join(second, "notes.txt"), "ignored")

	l := NewFileLoader(first, second, filepath.Join(first, "missing"))

	for name, want := range map[string]string{"alpha": "alpha", "beta": "beta", "gamma": "gamma"} {
		d, err := l.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if d.Name != want {
			t.Errorf("Load(%q).Name = %q, want %q", name, d.Name, want)
		}
		if d.Source == "" {
			t.Errorf("Load(%q) did not record its source", name)
		}
	}

	if _, err := l.Load("hidden"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND for a file two levels down, got %v", err)
	}

	names, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, names); diff != "" {
		t.Errorf("List (-want +got):\n%s", diff)
	}
}

func TestFileLoader_BrokenFileIsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.yaml"), "name: broken\n")
	_, err := NewFileLoader(dir).Load("broken")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if appErr.Details["path"] != filepath.Join(dir, "broken.yaml") {
		t.Errorf("path detail = %v", appErr.Details["path"])
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elsewhere", "delta.yaml")
	writeFile(t, path, doc("delta"))
	l := NewFileLoader(t.TempDir())

	d, err := Resolve(l, path)
	if err != nil || d.Name != "delta" {
		t.Fatalf("Resolve by path: %v, %v", d, err)
	}
	if _, err := Resolve(l, "delta"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND by name, got %v", err)
	}
}

func TestBundledExamplesParse(t *testing.T) {
	l := NewFileLoader(filepath.Join("..", "examples"))
	names, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		t.Fatal("no bundled examples found")
	}
	for _, name := range names {
		if _, err := l.Load(name); err != nil {
			t.Errorf("example %q: %v", name, err)
		}
	}
}
