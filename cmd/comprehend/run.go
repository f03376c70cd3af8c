package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/comprehend/comprehension"
	"github.com/kbukum/comprehend/definition"
	"github.com/kbukum/comprehend/errors"
	"github.com/kbukum/comprehend/expr"
	"github.com/kbukum/comprehend/logger"
	"github.com/kbukum/comprehend/observability"
	"github.com/kbukum/comprehend/pipeline"
)

// errLimitReached stops the drain once --limit results are written.
var errLimitReached = stderrors.New("limit reached")

type runOptions struct {
	limit  int
	format string
	params []string
}

func newRunCommand(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run <name|file>",
		Short: "Compile a definition and stream its results",
		Example: "  comprehend run pythagorean\n" +
			"  comprehend run ./triples.yaml --limit 5 --format json\n" +
			"  comprehend run scaled --param a=3",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				o.limit = a.cfg.Output.Limit
			}
			if !cmd.Flags().Changed("format") {
				o.format = a.cfg.Output.Format
			}
			return a.run(cmd.Context(), args[0], o)
		},
	}
	cmd.Flags().IntVarP(&o.limit, "limit", "n", 0, "stop after this many results (0 means all)")
	cmd.Flags().StringVarP(&o.format, "format", "o", "text", "output format: text, json or yaml")
	cmd.Flags().StringArrayVarP(&o.params, "param", "p", nil, "override a parameter as name=value (value is parsed as YAML; repeatable)")
	return cmd
}

func (a *app) run(ctx context.Context, ref string, o runOptions) (err error) {
	if o.limit < 0 {
		return errors.InvalidInput("limit", "--limit must not be negative")
	}
	w, err := newResultWriter(o.format, a.stdout)
	if err != nil {
		return err
	}

	def, err := definition.Resolve(a.loader, ref)
	if err != nil {
		return err
	}
	if err := applyParams(def, o.params); err != nil {
		return err
	}

	tel, err := a.startTelemetry(ctx)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	log := a.log.WithComponent("run").WithFields(logger.Fields(logger.FieldDefinition, def.Name))

	copts := []comprehension.Option{comprehension.WithLogger(a.log)}
	var metrics *observability.Metrics
	if tel.metrics != nil {
		metrics = tel.metrics.ForDefinition(def.Name)
		copts = append(copts, comprehension.WithObserver(metrics))
	}

	c, err := compile(ctx, def, copts...)
	if err != nil {
		return err
	}

	ctx, run := observability.StartRun(ctx, def.Name, c.Binders(), metrics)
	defer func() {
		status := run.End(ctx, err)
		log.Info("run finished", logger.Fields(
			"status", status,
			logger.FieldCount, run.Results(),
			logger.FieldDuration, run.Duration().Milliseconds(),
		))
	}()

	written := pipeline.Tap(c.Pipeline(), func(_ context.Context, v any) error {
		return w.Write(v)
	})
	err = pipeline.Drain(written, func(context.Context, any) error {
		run.Result()
		if o.limit > 0 && run.Results() >= int64(o.limit) {
			return errLimitReached
		}
		return nil
	}).Run(ctx)
	if stderrors.Is(err, errLimitReached) {
		err = nil
	}
	// Results written before a failure are still flushed.
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

// compile wraps expr.Compile in a span.
func compile(ctx context.Context, def *definition.Definition, opts ...comprehension.Option) (*comprehension.Comprehension[any], error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCompile)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrDefinition, def.Name)

	c, err := expr.Compile(def, opts...)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	return c, nil
}

// applyParams overrides definition params from name=value pairs.
func applyParams(def *definition.Definition, pairs []string) error {
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return errors.InvalidInput("param", fmt.Sprintf("parameter %q must be name=value", p))
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return errors.InvalidInput("param", fmt.Sprintf("parameter %q: %v", name, err))
		}
		if def.Params == nil {
			def.Params = map[string]any{}
		}
		def.Params[name] = v
	}
	return nil
}
