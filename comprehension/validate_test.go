package comprehension

import (
	"context"
	"testing"

	"github.com/kbukum/comprehend/errors"
)

func TestNew_AuthoringErrors(t *testing.T) {
	gen := Range(0, 2)
	tests := []struct {
		name    string
		clauses []Clause
		code    errors.ErrorCode
	}{
		{"no clauses", nil, errors.ErrCodeInvalidInput},
		{"empty binder", []Clause{For("", gen)}, errors.ErrCodeInvalidClause},
		{"malformed binder", []Clause{For("1x", gen)}, errors.ErrCodeInvalidClause},
		{"binder with space", []Clause{For("a b", gen)}, errors.ErrCodeInvalidClause},
		{"nil generator", []Clause{For("i", nil)}, errors.ErrCodeInvalidClause},
		{"nil predicate", []Clause{For("i", gen).Where(nil)}, errors.ErrCodeInvalidClause},
		{"duplicate binder", []Clause{For("i", gen), For("i", gen)}, errors.ErrCodeDuplicateBinder},
		{"unbound ref", []Clause{For("i", gen), For("j", gen).DependsOn("k")}, errors.ErrCodeUnboundBinder},
		{"forward ref", []Clause{For("i", gen).DependsOn("j"), For("j", gen)}, errors.ErrCodeForwardReference},
		{"self ref", []Clause{For("i", gen).DependsOn("i")}, errors.ErrCodeForwardReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.clauses, Tuple())
			if c != nil {
				t.Error("expected no comprehension on authoring error")
			}
			if !errors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if Validate(tt.clauses) == nil {
				t.Error("Validate accepted a clause list New rejected")
			}
		})
	}
}

func TestNew_NilMap(t *testing.T) {
	_, err := New[int]([]Clause{For("i", Range(0, 1))}, nil)
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestNew_DoesNotRunGenerators(t *testing.T) {
	calls := 0
	gen := func(ctx context.Context, e Env) (Iterator, error) {
		calls++
		return Range(0, 1)(ctx, e)
	}
	if _, err := New([]Clause{For("i", gen)}, Tuple()); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("generator ran %d times during assembly", calls)
	}
}

func TestDuplicateBinder_Details(t *testing.T) {
	err := Validate([]Clause{For("a", Range(0, 1)), For("b", Range(0, 1)), For("a", Range(0, 1))})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Details["first"] != 1 || appErr.Details["second"] != 3 {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}

func TestValidate_BackReferenceAccepted(t *testing.T) {
	err := Validate([]Clause{
		For("i", Range(0, 3)),
		For("j", RangeOf(func(e Env) (int, int) { return 0, Int(e, "i") })).DependsOn("i"),
		For("k", Range(0, 1)).DependsOn("i", "j"),
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIsIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"i": true, "_x": true, "x1": true, "ünï": true,
		"": false, "1": false, "a-b": false, "a.b": false,
	} {
		if got := isIdentifier(s); got != want {
			t.Errorf("isIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestFor_ForwardReadNeedsDependsOn(t *testing.T) {
	readsJ := RangeOf(func(e Env) (int, int) { return 0, Int(e, "j") })

	_, err := New([]Clause{For("i", readsJ).DependsOn("j"), For("j", Range(0, 2))}, Tuple())
	if !errors.IsCode(err, errors.ErrCodeForwardReference) {
		t.Fatalf("declared forward read: expected %s, got %v", errors.ErrCodeForwardReference, err)
	}

	c, err := New([]Clause{For("i", readsJ), For("j", Range(0, 2))}, Tuple())
	if err != nil {
		t.Fatalf("undeclared reads cannot be seen at construction, got %v", err)
	}
	defer func() {
		appErr, ok := recover().(*errors.AppError)
		if !ok || appErr.Code != errors.ErrCodeUnboundBinder {
			t.Errorf("expected an %s panic on first pull, got %v", errors.ErrCodeUnboundBinder, appErr)
		}
	}()
	_, _ = c.Collect(context.Background())
	t.Error("expected the first pull to panic")
}
