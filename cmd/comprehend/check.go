package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/comprehend/definition"
	"github.com/kbukum/comprehend/expr"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <name|file>...",
		Short: "Validate and compile definitions without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var firstErr error
			for _, ref := range args {
				if err := a.check(ref); err != nil {
					fmt.Fprintf(a.stdout, "%s: FAIL %v\n", ref, err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}
}

func (a *app) check(ref string) error {
	def, err := definition.Resolve(a.loader, ref)
	if err != nil {
		return err
	}
	c, err := expr.Compile(def)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: ok (for %s)\n", def.Name, strings.Join(c.Binders(), ", "))
	return nil
}
