package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ingestCmd(flags *globalFlags) *cobra.Command {
	var (
		loadPath string
		dataPath string
		natsURL  string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Validate instances and merge the accepted ones into the store",
		Long: `Ingest validates the nodes and edges of --load against the schema document
and merges the accepted ones into the instance store by id. Existing entries
are kept. Edges may reference nodes already in the store.

With --strict nothing is merged when any instance is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.flushMetrics()

			if dataPath != "" {
				app.cfg.Store.Path = dataPath
				app.cfg.Store.NATSURL = ""
			}
			if natsURL != "" {
				app.cfg.Store.NATSURL = natsURL
			}

			m, err := app.model()
			if err != nil {
				return err
			}
			incoming, err := readGraph(loadPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, release, err := app.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			existing, err := store.Load(ctx)
			if err != nil {
				return err
			}

			rep := app.validator(m).ValidateGraph(incoming, existing)
			rejected := rep.Rejected()
			out := cmd.OutOrStdout()
			printRejections(out, loadPath, incoming, rejected)

			if strict && len(rejected) > 0 {
				return fmt.Errorf("%d instance(s) rejected, nothing merged", len(rejected))
			}

			stats := existing.Merge(rep.Filter(incoming))
			if err := store.Save(ctx, existing); err != nil {
				return err
			}

			app.logger.Info("Ingested instances",
				"path", loadPath,
				"nodes_added", stats.NodesAdded,
				"edges_added", stats.EdgesAdded,
				"rejected", len(rejected))
			fmt.Fprintf(out, "nodes: %d added, %d already present\n", stats.NodesAdded, stats.NodesSkipped)
			fmt.Fprintf(out, "edges: %d added, %d already present\n", stats.EdgesAdded, stats.EdgesSkipped)
			fmt.Fprintf(out, "rejected: %d\n", len(rejected))
			return nil
		},
	}

	cmd.Flags().StringVar(&loadPath, "load", "", "Instance file to ingest (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "Instance store file (overrides store.path)")
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS URL of a KV-backed store (overrides store.nats_url)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Merge nothing if any instance is rejected")
	_ = cmd.MarkFlagRequired("load")

	return cmd
}
