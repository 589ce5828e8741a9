package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/sintology/ontology"
)

func inspectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print classes, properties and relationships from the schema document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			m, err := app.model()
			if err != nil {
				return err
			}
			printModel(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func printModel(w io.Writer, m *ontology.Model) {
	for _, c := range m.Classes() {
		if c.Label != c.Name {
			fmt.Fprintf(w, "%s (%s)\n", c.Name, c.Label)
		} else {
			fmt.Fprintln(w, c.Name)
		}
		for _, p := range m.DatatypePropertiesOf(c.Name) {
			suffix := ""
			if p.IsUniversal() {
				suffix = " [all classes]"
			}
			fmt.Fprintf(w, "  %s: %s%s\n", p.Name, p.Range, suffix)
		}
		for _, p := range m.ObjectPropertiesOf(c.Name) {
			if p.Cardinality != "" {
				fmt.Fprintf(w, "  %s -> %s (%s)\n", p.Name, p.Range, p.Cardinality)
			} else {
				fmt.Fprintf(w, "  %s -> %s\n", p.Name, p.Range)
			}
		}
		if in := m.Incoming(c.Name); len(in) > 0 {
			fmt.Fprintf(w, "  <- %s\n", strings.Join(in, ", "))
		}
	}
}
