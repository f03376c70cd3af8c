package comprehension

import (
	"fmt"
	"slices"

	"github.com/kbukum/comprehend/errors"
)

// scope maps binder names to tuple positions. It is built once per
// comprehension and shared read-only by every Env of that comprehension.
type scope struct {
	names []string
	index map[string]int
}

func newScope(names []string) *scope {
	s := &scope{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		s.index[n] = i
	}
	return s
}

// Env is an immutable ordered tuple of the values bound so far. At nesting
// level k it holds exactly k values, one per enclosing clause, outermost first.
//
// Env is a small value type; copies share the underlying storage, which is
// never written after construction.
type Env struct {
	scope  *scope
	values []any
}

// NewEnv builds a standalone environment from parallel names and values.
// It is meant for tests and for calling generators or predicates directly.
func NewEnv(names []string, values ...any) (Env, error) {
	if len(values) > len(names) {
		return Env{}, errors.InvalidInput("values", fmt.Sprintf("%d values for %d names", len(values), len(names)))
	}
	for i, n := range names {
		if j := slices.Index(names, n); j != i {
			return Env{}, errors.DuplicateBinder(n, j, i)
		}
	}
	return Env{scope: newScope(slices.Clone(names)), values: slices.Clone(values)}, nil
}

// Len returns the number of bound values.
func (e Env) Len() int { return len(e.values) }

// At returns the i-th bound value, outermost first. It panics if i is out of range.
func (e Env) At(i int) any { return e.values[i] }

// Lookup returns the value bound to name, if name is bound at this level.
func (e Env) Lookup(name string) (any, bool) {
	if e.scope == nil {
		return nil, false
	}
	i, ok := e.scope.index[name]
	if !ok || i >= len(e.values) {
		return nil, false
	}
	return e.values[i], true
}

// Names returns the names bound at this level, outermost first.
func (e Env) Names() []string {
	if e.scope == nil {
		return nil
	}
	n := min(len(e.values), len(e.scope.names))
	return slices.Clone(e.scope.names[:n])
}

// Values returns a copy of the bound values, outermost first.
func (e Env) Values() []any { return slices.Clone(e.values) }

// Append returns a new Env with v bound at the next position. The receiver
// is left untouched; the result never shares a writable backing array with it.
func (e Env) Append(v any) Env {
	values := make([]any, len(e.values)+1)
	copy(values, e.values)
	values[len(e.values)] = v
	return Env{scope: e.scope, values: values}
}

// String renders the tuple as (name=value, ...).
func (e Env) String() string {
	names := e.Names()
	s := "("
	for i, v := range e.values {
		if i > 0 {
			s += ", "
		}
		if i < len(names) {
			s += names[i] + "="
		}
		s += fmt.Sprint(v)
	}
	return s + ")"
}

// Get returns the value bound to name as a T.
//
// Reading a name that is not bound yet, or reading it as the wrong type, is
// a mistake in how the comprehension was written, so Get panics with an
// *errors.AppError. Use Lookup or TryGet to probe instead.
func Get[T any](e Env, name string) T {
	v, ok := e.Lookup(name)
	if !ok {
		panic(errors.New(errors.ErrCodeUnboundBinder,
			fmt.Sprintf("name %q is not bound at depth %d", name, e.Len())).
			WithDetail("binder", name))
	}
	t, ok := v.(T)
	if !ok {
		var want T
		panic(errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("binder %q holds %T, not %T", name, v, want)).
			WithDetail("binder", name))
	}
	return t
}

// TryGet is like Get but reports failure instead of panicking.
func TryGet[T any](e Env, name string) (T, bool) {
	v, ok := e.Lookup(name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Int is shorthand for Get[int].
func Int(e Env, name string) int { return Get[int](e, name) }
