// Package comprehension assembles multi-level filtered iteration into a
// single lazy pull pipeline.
//
// A comprehension is an ordered list of clauses plus a map function:
//
//	[ i * j  for i in [1, 3)  for j in [2, 4) ]
//
// becomes
//
//	c, err := comprehension.New(
//	    []comprehension.Clause{
//	        comprehension.For("i", comprehension.Range(1, 3)),
//	        comprehension.For("j", comprehension.Range(2, 4)),
//	    },
//	    comprehension.Yield(func(e comprehension.Env) int {
//	        return comprehension.Int(e, "i") * comprehension.Int(e, "j")
//	    }),
//	)
//	products, err := c.Collect(ctx) // [2 3 4 6]
//
// # Evaluation
//
// Each clause contributes one flat-map stage, which calls the clause's
// generator once per surviving outer tuple, and at most one filter stage,
// which applies the clause's predicates left to right with short-circuit.
// A single map stage ends the chain. Nothing is materialized: pulling one
// result advances only the stages needed to produce it.
//
// Generators may read any binder of an enclosing clause, so they are never
// cached. Results come out in lexicographic order of the binders, the
// outermost binder varying slowest.
//
// # Errors
//
// Mistakes in the clause list (duplicate binders, references to binders
// that are unknown or not yet bound, missing generators) are rejected by
// New with an *errors.AppError. Errors returned by generators, predicates
// or the map function surface unchanged from the pull that triggered them
// and end the run. An empty result is not an error.
package comprehension
