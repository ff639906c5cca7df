package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/jvrace/internal/adapters/sink"
	service "github.com/okian/jvrace/internal/app"
	"github.com/okian/jvrace/pkg/logger"
)

func (c *cli) horsesCmd() *cobra.Command {
	var (
		dryRun bool
		recent int
	)
	cmd := &cobra.Command{
		Use:   "horses",
		Short: "Build horse masters and the name index from UM records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := c.setup(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("recent") {
				recent = cfg.UMRecentFiles
			}

			log := logger.Named("horses")
			out := sink.NewFileSink(cfg.RacesDir, cfg.MastersDir,
				sink.WithDryRun(dryRun), sink.WithLogger(log))
			src := service.NewSources(cfg.SEDataDir, cfg.SRDataDir, cfg.UMDataDir).UM
			b := service.NewHorseMasterBuilder(src, out,
				service.WithLogger(log),
				service.WithRecentFiles(recent),
			)

			rep, err := b.Run(ctx)
			exportMetrics(ctx, cfg)
			if err != nil {
				return err
			}
			if err := printJSON(c.stdout, rep); err != nil {
				return err
			}
			if rep.WriteErrors > 0 {
				return fmt.Errorf("%w: %d horse documents", errWriteFailures, rep.WriteErrors)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&dryRun, "dry-run", false, "decode without writing")
	f.IntVar(&recent, "recent", 0, "scan only the N newest UM files, 0 for all (default um_recent_files)")
	return cmd
}
