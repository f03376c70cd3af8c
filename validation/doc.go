// Package validation checks definitions and configuration before they are
// compiled or applied.
//
// Struct tags cover the declarative checks; tag names follow the yaml tag
// of each field, so reported paths match the file the user wrote.
//
//	type Clause struct {
//	    Var string `yaml:"var" validate:"required,identifier"`
//	}
//	err := validation.ValidateStruct(c)
//
// Checks that depend on more than one field are collected programmatically:
//
//	v := validation.New()
//	v.Identifier("var", name)
//	v.Custom(!seen[name], "var", "is already bound")
//	err := v.Validate()
//
// Both forms return an *errors.AppError with code INVALID_INPUT whose
// "fields" detail lists every failing field.
package validation
