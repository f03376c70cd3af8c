package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/comprehend/logger"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the definitions found in the configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.loader.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, name := range names {
				def, err := a.loader.Load(name)
				if err != nil {
					a.log.Warn("skipping definition", logger.Fields("name", name, "error", err.Error()))
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\n", def.Name, def.Description)
			}
			return tw.Flush()
		},
	}
}
