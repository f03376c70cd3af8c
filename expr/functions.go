package expr

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// maxMaterialized bounds how many elements a range may expand to when an
// operation needs the whole list rather than iterating it.
const maxMaterialized = 1 << 20

// rangeFunctions declares range(hi) and range(lo, hi), the half-open
// integer interval [lo, hi).
func rangeFunctions() cel.EnvOption {
	return cel.Function("range",
		cel.Overload("range_int",
			[]*cel.Type{cel.IntType}, cel.ListType(cel.IntType),
			cel.UnaryBinding(func(hi ref.Val) ref.Val {
				h, ok := hi.(types.Int)
				if !ok {
					return types.MaybeNoSuchOverloadErr(hi)
				}
				return rangeOf(0, int64(h))
			}),
		),
		cel.Overload("range_int_int",
			[]*cel.Type{cel.IntType, cel.IntType}, cel.ListType(cel.IntType),
			cel.BinaryBinding(func(lo, hi ref.Val) ref.Val {
				l, ok := lo.(types.Int)
				if !ok {
					return types.MaybeNoSuchOverloadErr(lo)
				}
				h, ok := hi.(types.Int)
				if !ok {
					return types.MaybeNoSuchOverloadErr(hi)
				}
				return rangeOf(int64(l), int64(h))
			}),
		),
	)
}

// rangeList is a CEL list over [lo, hi) that produces its elements on
// demand. Iterating it allocates nothing per element; operations that need
// the whole list (concatenation, equality, indexing by the runtime) expand
// it first.
type rangeList struct {
	lo, hi int64
}

var _ traits.Lister = rangeList{}

func newRangeList(lo, hi int64) rangeList {
	return rangeList{lo: lo, hi: max(hi, lo)}
}

// rangeOf returns the range [lo, hi), or an error when its length does not
// fit in an int64.
func rangeOf(lo, hi int64) ref.Val {
	if hi > lo && hi-lo < 0 {
		return types.NewErr("range(%d, %d) is too large", lo, hi)
	}
	return newRangeList(lo, hi)
}

func (r rangeList) size() int64 { return r.hi - r.lo }

func (r rangeList) expand() ref.Val {
	if r.size() > maxMaterialized {
		return types.NewErr("range(%d, %d) is too large to expand (%d elements, limit %d)",
			r.lo, r.hi, r.size(), maxMaterialized)
	}
	ints := make([]int64, 0, r.size())
	for i := r.lo; i < r.hi; i++ {
		ints = append(ints, i)
	}
	return types.DefaultTypeAdapter.NativeToValue(ints)
}

func (r rangeList) Add(other ref.Val) ref.Val {
	l, ok := r.expand().(traits.Lister)
	if !ok {
		return r.expand()
	}
	return l.Add(other)
}

func (r rangeList) Contains(value ref.Val) ref.Val {
	switch v := value.(type) {
	case types.Int:
		return types.Bool(int64(v) >= r.lo && int64(v) < r.hi)
	case types.Uint:
		return types.Bool(r.hi > 0 && uint64(v) < uint64(r.hi) && int64(v) >= r.lo)
	case types.Double:
		f := float64(v)
		return types.Bool(f == float64(int64(f)) && int64(f) >= r.lo && int64(f) < r.hi)
	}
	return types.False
}

func (r rangeList) Get(index ref.Val) ref.Val {
	i, ok := index.(types.Int)
	if !ok {
		return types.MaybeNoSuchOverloadErr(index)
	}
	if i < 0 || int64(i) >= r.size() {
		return types.NewErr("index out of range: %d", int64(i))
	}
	return types.Int(r.lo + int64(i))
}

func (r rangeList) Iterator() traits.Iterator {
	return &rangeIterator{next: r.lo, hi: r.hi}
}

func (r rangeList) Size() ref.Val { return types.Int(r.size()) }

func (r rangeList) ConvertToNative(typeDesc reflect.Type) (any, error) {
	v := r.expand()
	if types.IsError(v) {
		return nil, asError(v)
	}
	return v.ConvertToNative(typeDesc)
}

func (r rangeList) ConvertToType(typeVal ref.Type) ref.Val {
	return r.expand().ConvertToType(typeVal)
}

func (r rangeList) Equal(other ref.Val) ref.Val {
	if o, ok := other.(rangeList); ok {
		return types.Bool(r.size() == o.size() && (r.size() == 0 || r.lo == o.lo))
	}
	return r.expand().Equal(other)
}

func (r rangeList) Type() ref.Type { return types.ListType }

func (r rangeList) Value() any {
	v := r.expand()
	if types.IsError(v) {
		return nil
	}
	return v.Value()
}

func (r rangeList) String() string { return fmt.Sprintf("range(%d, %d)", r.lo, r.hi) }

type rangeIterator struct {
	next, hi int64
}

func (it *rangeIterator) HasNext() ref.Val { return types.Bool(it.next < it.hi) }

func (it *rangeIterator) Next() ref.Val {
	if it.next >= it.hi {
		return types.NewErr("iterator exhausted")
	}
	v := it.next
	it.next++
	return types.Int(v)
}

func (it *rangeIterator) ConvertToNative(reflect.Type) (any, error) {
	return nil, fmt.Errorf("type conversion on iterators not supported")
}

func (it *rangeIterator) ConvertToType(ref.Type) ref.Val { return types.NoSuchOverloadErr() }

func (it *rangeIterator) Equal(ref.Val) ref.Val { return types.NoSuchOverloadErr() }

func (it *rangeIterator) Type() ref.Type { return types.IteratorType }

func (it *rangeIterator) Value() any { return nil }
