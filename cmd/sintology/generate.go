package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func generateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the ontology and schema documents from the ERD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}
}

func runGenerate(cmd *cobra.Command, flags *globalFlags) error {
	app, err := newApp(flags)
	if err != nil {
		return err
	}
	defer app.flushMetrics()

	g, err := app.generator()
	if err != nil {
		return err
	}
	res, err := g.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	for _, a := range res.Artifacts {
		state := "unchanged"
		if a.Changed {
			state = "written"
		}
		fmt.Fprintf(out, "%s: %s (%d bytes, %s)\n", a.Name, a.Path, a.Bytes, state)
	}
	fmt.Fprintf(out, "%d classes, %d properties\n", len(res.Model.Classes()), len(res.Model.Properties()))
	return nil
}
