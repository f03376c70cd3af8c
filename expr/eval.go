package expr

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/interpreter"

	"github.com/kbukum/comprehend/comprehension"
	"github.com/kbukum/comprehend/pipeline"
)

// EvalError reports an expression that failed while a comprehension was
// running. It carries the tuple the expression was evaluated against.
type EvalError struct {
	Definition string
	Location   string
	Expression string
	Tuple      string
	Err        error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s %q failed at %s: %v", e.Definition, e.Location, e.Expression, e.Tuple, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// program is one compiled expression.
type program struct {
	definition string
	location   string
	source     string
	prg        cel.Program
	params     map[string]any
}

func (p *program) eval(ctx context.Context, env comprehension.Env) (ref.Val, error) {
	out, _, err := p.prg.ContextEval(ctx, activation{env: env, params: p.params})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, p.fail(env, err)
	}
	if types.IsError(out) {
		return nil, p.fail(env, asError(out))
	}
	return out, nil
}

func (p *program) fail(env comprehension.Env, err error) error {
	return &EvalError{
		Definition: p.definition,
		Location:   p.location,
		Expression: p.source,
		Tuple:      env.String(),
		Err:        err,
	}
}

func (p *program) generator() comprehension.Generator {
	return func(ctx context.Context, env comprehension.Env) (comprehension.Iterator, error) {
		out, err := p.eval(ctx, env)
		if err != nil {
			return nil, err
		}
		switch v := out.(type) {
		case traits.Lister:
			return &listIter{source: v.Iterator()}, nil
		case traits.Mapper:
			return pipeline.SliceIter(sortedKeys(v)), nil
		}
		return nil, p.fail(env, fmt.Errorf("must evaluate to a list or map, got %s", out.Type().TypeName()))
	}
}

func (p *program) predicate() comprehension.Predicate {
	return func(ctx context.Context, env comprehension.Env) (bool, error) {
		out, err := p.eval(ctx, env)
		if err != nil {
			return false, err
		}
		b, ok := out.(types.Bool)
		if !ok {
			return false, p.fail(env, fmt.Errorf("must evaluate to bool, got %s", out.Type().TypeName()))
		}
		return bool(b), nil
	}
}

func (p *program) mapper() comprehension.MapFunc[any] {
	return func(ctx context.Context, env comprehension.Env) (any, error) {
		out, err := p.eval(ctx, env)
		if err != nil {
			return nil, err
		}
		return Native(out), nil
	}
}

// activation resolves bound names first and parameters second. Binders
// and parameters never share a name, so the order only matters for speed.
type activation struct {
	env    comprehension.Env
	params map[string]any
}

func (a activation) ResolveName(name string) (any, bool) {
	if v, ok := a.env.Lookup(name); ok {
		return v, true
	}
	v, ok := a.params[name]
	return v, ok
}

func (a activation) Parent() interpreter.Activation { return nil }

// listIter pulls elements from a CEL list one at a time.
type listIter struct {
	source traits.Iterator
}

func (it *listIter) Next(context.Context) (any, bool, error) {
	if it.source.HasNext() != types.True {
		return nil, false, nil
	}
	v := it.source.Next()
	if types.IsError(v) {
		return nil, false, asError(v)
	}
	return Native(v), true, nil
}

func (it *listIter) Close() error { return nil }

// Native converts a CEL value into plain Go: int64, uint64, float64,
// string, bool, []byte, nil, []any and map[string]any. Other values are
// returned as their CEL runtime representation.
func Native(v ref.Val) any {
	switch v := v.(type) {
	case types.Null:
		return nil
	case traits.Lister:
		out := make([]any, 0)
		for it := v.Iterator(); it.HasNext() == types.True; {
			out = append(out, Native(it.Next()))
		}
		return out
	case traits.Mapper:
		out := make(map[string]any)
		for it := v.Iterator(); it.HasNext() == types.True; {
			k := it.Next()
			out[fmt.Sprint(Native(k))] = Native(v.Get(k))
		}
		return out
	}
	return v.Value()
}

// sortedKeys returns the keys of m in a stable order, so iterating a map
// is deterministic.
func sortedKeys(m traits.Mapper) []any {
	var keys []any
	for it := m.Iterator(); it.HasNext() == types.True; {
		keys = append(keys, Native(it.Next()))
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b any) int {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case uint64:
		if y, ok := b.(uint64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok && x != y {
			if !x {
				return -1
			}
			return 1
		}
	}
	return cmp.Compare(fmt.Sprintf("%T:%v", a, a), fmt.Sprintf("%T:%v", b, b))
}

func asError(v ref.Val) error {
	if err, ok := v.Value().(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
