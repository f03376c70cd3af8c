package comprehension

import (
	"fmt"
	"unicode"

	"github.com/kbukum/comprehend/errors"
)

// Validate checks a clause list for authoring errors without assembling it:
// an empty list, empty or malformed binder names, missing generators or
// predicates, duplicate binders, and Refs that name unknown binders or
// binders that are not introduced strictly earlier.
func Validate(clauses []Clause) error {
	_, err := validate(clauses)
	return err
}

func validate(clauses []Clause) ([]string, error) {
	if len(clauses) == 0 {
		return nil, errors.InvalidInput("clauses", "at least one clause is required")
	}

	names := make([]string, len(clauses))
	defined := make(map[string]int, len(clauses))
	for i, c := range clauses {
		if c.Binder == "" {
			return nil, errors.InvalidClause(i, "binder name is empty")
		}
		if !isIdentifier(c.Binder) {
			return nil, errors.InvalidClause(i, fmt.Sprintf("binder %q is not an identifier", c.Binder))
		}
		if c.Generator == nil {
			return nil, errors.InvalidClause(i, fmt.Sprintf("binder %q has no generator", c.Binder))
		}
		for j, p := range c.Predicates {
			if p == nil {
				return nil, errors.InvalidClause(i, fmt.Sprintf("predicate %d of binder %q is nil", j+1, c.Binder))
			}
		}
		if first, dup := defined[c.Binder]; dup {
			return nil, errors.DuplicateBinder(c.Binder, first, i)
		}
		defined[c.Binder] = i
		names[i] = c.Binder
	}

	// second pass: a later binder must be reported as a forward reference,
	// not as unbound
	for i, c := range clauses {
		for _, ref := range c.Refs {
			at, ok := defined[ref]
			if !ok {
				return nil, errors.UnboundBinder(ref, i)
			}
			if at >= i {
				return nil, errors.ForwardReference(ref, i, at)
			}
		}
	}
	return names, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}
