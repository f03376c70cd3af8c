package expr

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/kbukum/comprehend/comprehension"
	"github.com/kbukum/comprehend/definition"
	"github.com/kbukum/comprehend/errors"
)

var (
	baseEnv = sync.OnceValues(func() (*cel.Env, error) {
		return cel.NewEnv(rangeFunctions())
	})

	undeclared = regexp.MustCompile(`undeclared reference to '([^']+)'`)
)

// Compile turns a definition into a runnable comprehension.
//
// Each expression is type-checked against exactly the names in scope where
// it appears: a clause's "in" sees the params and the binders of earlier
// clauses, its "if" expressions additionally see its own binder, and
// "yield" sees everything. A name that no clause binds is reported as
// UNBOUND_BINDER; a name that a later clause binds, as FORWARD_REFERENCE.
func Compile(def *definition.Definition, opts ...comprehension.Option) (*comprehension.Comprehension[any], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	c, err := newCompiler(def)
	if err != nil {
		return nil, err
	}

	clauses := make([]comprehension.Clause, len(def.Clauses))
	for i, cl := range def.Clauses {
		loc := fmt.Sprintf("clauses[%d].in", i)
		gen, err := c.compile(loc, cl.In, i, generatorKinds)
		if err != nil {
			return nil, err
		}
		clauses[i] = comprehension.For(cl.Var, gen.generator())
		for j, src := range cl.If {
			loc := fmt.Sprintf("clauses[%d].if[%d]", i, j)
			pred, err := c.compile(loc, src, i+1, predicateKinds)
			if err != nil {
				return nil, err
			}
			clauses[i] = clauses[i].Where(pred.predicate())
		}
	}
	yield, err := c.compile("yield", def.Yield, len(def.Clauses), nil)
	if err != nil {
		return nil, err
	}

	opts = append([]comprehension.Option{comprehension.WithName(def.Name)}, opts...)
	return comprehension.New(clauses, yield.mapper(), opts...)
}

var (
	generatorKinds = []types.Kind{types.ListKind, types.MapKind, types.DynKind}
	predicateKinds = []types.Kind{types.BoolKind, types.DynKind}
)

type compiler struct {
	def     *definition.Definition
	binders []string
	params  map[string]any
	root    *cel.Env
	// scopes[k] declares the params and the first k binders.
	scopes []*cel.Env
}

func newCompiler(def *definition.Definition) (*compiler, error) {
	base, err := baseEnv()
	if err != nil {
		return nil, errors.Internal(err)
	}
	var vars []cel.EnvOption
	for _, name := range def.ParamNames() {
		vars = append(vars, cel.Variable(name, cel.DynType))
	}
	root, err := base.Extend(vars...)
	if err != nil {
		return nil, errors.InvalidInput("params", err.Error()).WithCause(err)
	}

	c := &compiler{
		def:     def,
		binders: def.Binders(),
		params:  maps.Clone(def.Params),
		root:    root,
		scopes:  []*cel.Env{root},
	}
	for i, b := range c.binders {
		next, err := c.scopes[len(c.scopes)-1].Extend(cel.Variable(b, cel.DynType))
		if err != nil {
			return nil, errors.InvalidClause(i, fmt.Sprintf("binder %q cannot be declared: %v", b, err)).WithCause(err)
		}
		c.scopes = append(c.scopes, next)
	}
	return c, nil
}

// compile checks src in the scope holding the first k binders. A non-empty
// kinds restricts the static result type.
func (c *compiler) compile(loc, src string, k int, kinds []types.Kind) (*program, error) {
	env := c.scopes[k]
	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, c.explain(loc, src, k, iss)
	}
	if out := ast.OutputType(); len(kinds) > 0 && !slices.Contains(kinds, out.Kind()) {
		return nil, errors.InvalidExpression(loc, src,
			fmt.Errorf("has type %s, want %s", out, kindNames(kinds)))
	}
	prg, err := env.Program(ast, cel.InterruptCheckFrequency(100))
	if err != nil {
		return nil, errors.InvalidExpression(loc, src, err)
	}
	return &program{
		definition: c.def.Name,
		location:   loc,
		source:     src,
		prg:        prg,
		params:     c.params,
	}, nil
}

// explain classifies a failed compilation in the scope holding k binders.
func (c *compiler) explain(loc, src string, k int, iss *cel.Issues) error {
	if _, perr := c.root.Parse(src); perr != nil && perr.Err() != nil {
		return errors.InvalidExpression(loc, src, perr.Err())
	}

	full := c.scopes[len(c.scopes)-1]
	if _, fiss := full.Compile(src); fiss == nil || fiss.Err() == nil {
		for j := k; j < len(c.binders); j++ {
			if c.needs(src, j) {
				return errors.New(errors.ErrCodeForwardReference,
					fmt.Sprintf("%s references %q before clause %d binds it", loc, c.binders[j], j+1)).
					WithDetails(map[string]any{"binder": c.binders[j], "location": loc, "defined_at": j + 1})
			}
		}
	}

	if m := undeclared.FindStringSubmatch(iss.String()); m != nil {
		name := m[1]
		if at := slices.Index(c.binders, name); at >= k {
			return errors.New(errors.ErrCodeForwardReference,
				fmt.Sprintf("%s references %q before clause %d binds it", loc, name, at+1)).
				WithDetails(map[string]any{"binder": name, "location": loc, "defined_at": at + 1})
		}
		return errors.New(errors.ErrCodeUnboundBinder,
			fmt.Sprintf("%s references unbound name %q", loc, name)).
			WithDetails(map[string]any{"binder": name, "location": loc})
	}
	return errors.InvalidExpression(loc, src, iss.Err())
}

// needs reports whether src stops compiling when binder j is the only
// name left out of scope.
func (c *compiler) needs(src string, j int) bool {
	var vars []cel.EnvOption
	for i, b := range c.binders {
		if i != j {
			vars = append(vars, cel.Variable(b, cel.DynType))
		}
	}
	env, err := c.root.Extend(vars...)
	if err != nil {
		return false
	}
	_, iss := env.Compile(src)
	return iss != nil && iss.Err() != nil
}

func kindNames(kinds []types.Kind) string {
	names := map[types.Kind]string{
		types.ListKind: "list", types.MapKind: "map", types.BoolKind: "bool", types.DynKind: "dyn",
	}
	s := ""
	for i, k := range kinds {
		if i > 0 {
			s += " or "
		}
		s += names[k]
	}
	return s
}
