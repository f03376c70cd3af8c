package definition

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/comprehend/errors"
	"github.com/kbukum/comprehend/validation"
)

// Definition is one comprehension document.
type Definition struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Params are constants visible to every expression.
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	// Yield is the expression each fully bound tuple is mapped to.
	Yield   string   `yaml:"yield" json:"yield" validate:"required"`
	Clauses []Clause `yaml:"clauses" json:"clauses" validate:"min=1,dive"`

	// Source is the file the definition was read from, if any.
	Source string `yaml:"-" json:"-"`
}

// Clause binds Var to each element of the collection In evaluates to,
// keeping only tuples for which every If expression holds.
type Clause struct {
	Var string   `yaml:"var" json:"var" validate:"required,identifier"`
	In  string   `yaml:"in" json:"in" validate:"required"`
	If  []string `yaml:"if,omitempty" json:"if,omitempty" validate:"dive,required"`
}

// Binders returns the clause variables, outermost first.
func (d *Definition) Binders() []string {
	names := make([]string, len(d.Clauses))
	for i, c := range d.Clauses {
		names[i] = c.Var
	}
	return names
}

// ParamNames returns the parameter names in sorted order.
func (d *Definition) ParamNames() []string {
	return slices.Sorted(maps.Keys(d.Params))
}

// Validate checks the document's shape: required fields, identifier
// syntax, and that no name is bound twice across params and clauses.
func (d *Definition) Validate() error {
	v := validation.New()
	if err := validation.ValidateStruct(d); err != nil {
		v.Merge("", err)
	}
	for _, name := range d.ParamNames() {
		v.Identifier("params."+name, name)
	}
	if v.HasErrors() {
		return v.Validate()
	}

	seen := make(map[string]int, len(d.Clauses))
	for i, c := range d.Clauses {
		if _, ok := d.Params[c.Var]; ok {
			return errors.New(errors.ErrCodeDuplicateBinder,
				fmt.Sprintf("clause %d binds %q, which is already a parameter", i+1, c.Var)).
				WithDetails(map[string]any{"binder": c.Var, "clause": i + 1})
		}
		if first, ok := seen[c.Var]; ok {
			return errors.DuplicateBinder(c.Var, first, i)
		}
		seen[c.Var] = i
	}
	return nil
}

// Parse decodes and validates a single YAML document.
// Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var d Definition
	if err := dec.Decode(&d); err != nil {
		return nil, errors.InvalidInput("", fmt.Sprintf("parsing definition: %v", err)).WithCause(err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes d as YAML.
func Marshal(d *Definition) ([]byte, error) {
	return yaml.Marshal(d)
}
