// Package expr compiles definition documents into comprehensions, using
// CEL (github.com/google/cel-go) for the clause, filter and yield
// expressions.
//
// Every binder and parameter is declared with the dynamic type, so values
// flow between clauses without annotations. Integers are int64 once they
// have passed through an expression.
//
// Two functions are added to the standard CEL library:
//
//	range(hi)      // [0, hi)
//	range(lo, hi)  // [lo, hi)
//
// A range is produced element by element as the comprehension pulls from
// it and is never stored as a whole unless an expression needs the full
// list.
//
// Expressions that fail while running are reported as *EvalError and end
// the run; everything detectable from the text alone is reported by
// Compile instead.
package expr
