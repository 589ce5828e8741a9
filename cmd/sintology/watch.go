package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/sintology/watch"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the ERD changes",
		Long: `Watch regenerates the ontology and schema documents each time the ERD
file changes, then reloads the schema snapshot. A failed run is logged and
the previous documents stay in place. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			g, err := app.generator()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			regenerate := func(ctx context.Context) error {
				defer app.flushMetrics()
				if _, err := g.Run(ctx); err != nil {
					return err
				}
				m, err := app.schema.Reload()
				if err != nil {
					return fmt.Errorf("reload schema: %w", err)
				}
				app.logger.Info("Schema reloaded", "path", app.schema.Path(), "classes", len(m.Classes()))
				return nil
			}

			// Initial run; the watcher keeps going even if the ERD is currently broken.
			if err := regenerate(ctx); err != nil {
				app.logger.Warn("Initial generation failed", "error", err)
			}

			w := watch.New(app.cfg.ERD.Path, app.cfg.Watch.Debounce, app.logger)
			if err := w.Run(ctx, regenerate); err != nil {
				return err
			}
			app.logger.Info("Received shutdown signal")
			return nil
		},
	}
}
