// Package main provides the sintology binary entry point.
// Sintology turns an entity-relationship diagram into an OWL ontology,
// a runtime schema document and an instance validator.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "sintology"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command and override configuration.
type globalFlags struct {
	configPath  string
	logLevel    string
	erdPath     string
	ontologyOut string
	schemaOut   string
	format      string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Generate an ontology and schema from an ERD",
		Long: `Sintology reads a Mermaid entity-relationship diagram and generates:
- an OWL ontology document (Turtle, N-Triples or JSON-LD)
- a JSON schema document used to validate instance data

Running sintology without a subcommand regenerates both documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flags.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.erdPath, "erd", "", "ERD source file")
	pf.StringVar(&flags.ontologyOut, "ontology-out", "", "Ontology document output path")
	pf.StringVar(&flags.schemaOut, "schema-out", "", "Schema document output path")
	pf.StringVar(&flags.format, "format", "", "Ontology format (turtle, ntriples, jsonld)")

	cmd.AddCommand(
		generateCmd(flags),
		validateCmd(flags),
		ingestCmd(flags),
		watchCmd(flags),
		inspectCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func setupLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
