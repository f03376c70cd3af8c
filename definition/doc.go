// Package definition reads comprehensions written as YAML documents.
//
// A document names the comprehension, lists its clauses outermost first,
// and gives the expression each result is built from:
//
//	name: pythagorean
//	params: {limit: 20}
//	yield: "[a, b, c]"
//	clauses:
//	  - var: c
//	    in: "range(1, limit)"
//	  - var: b
//	    in: "range(1, c)"
//	  - var: a
//	    in: "range(1, b)"
//	    if: ["a*a + b*b == c*c"]
//
// This package only checks the shape of a document. Expressions are
// compiled, and references between clauses are resolved, by package expr.
package definition
