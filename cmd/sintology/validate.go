package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/c360studio/sintology/instance"
	"github.com/c360studio/sintology/validate"
)

func validateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files or globs...]",
		Short: "Validate instance files against the schema document",
		Long: `Validate checks every node and edge of the given instance files against
the generated schema document. Patterns support ** for recursive matching.
Without arguments the configured store file is validated.

Exits with status 1 when any instance is rejected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.flushMetrics()

			if len(args) == 0 {
				args = []string{app.cfg.Store.Path}
			}
			files, err := resolveFiles(args)
			if err != nil {
				return err
			}

			m, err := app.model()
			if err != nil {
				return err
			}
			v := app.validator(m)

			var checked, rejected int
			for _, file := range files {
				g, err := readGraph(file)
				if err != nil {
					return err
				}
				rep := v.ValidateGraph(g)
				checked += len(rep.Nodes) + len(rep.Edges)
				bad := rep.Rejected()
				rejected += len(bad)
				printRejections(cmd.OutOrStdout(), file, g, bad)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s), %d instance(s) checked, %d rejected\n", len(files), checked, rejected)
			if rejected > 0 {
				return fmt.Errorf("%d instance(s) rejected", rejected)
			}
			return nil
		},
	}
}

// resolveFiles expands glob patterns to files, keeping first-seen order.
func resolveFiles(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches := []string{pattern}
		if containsGlob(pattern) {
			var err error
			matches, err = doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("pattern %q matches no files", pattern)
			}
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				resolved = append(resolved, m)
			}
		}
	}
	return resolved, nil
}

func containsGlob(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func readGraph(path string) (*instance.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instances: %w", err)
	}
	defer f.Close()
	g, err := instance.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func printRejections(w io.Writer, file string, g *instance.Graph, rejected []validate.Result) {
	for _, res := range rejected {
		subject := res.ID
		if res.Kind == validate.KindNode {
			if n, ok := g.Node(res.ID); ok {
				subject = fmt.Sprintf("%s %q", n.Class, instance.Label(n))
			}
		}
		if subject == "" {
			subject = "(no id)"
		}
		for _, v := range res.Violations {
			fmt.Fprintf(w, "%s: %s %s: %s\n", file, res.Kind, subject, v)
		}
	}
}
