package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/jvrace/internal/adapters/catalog"
	"github.com/okian/jvrace/internal/adapters/sink"
	service "github.com/okian/jvrace/internal/app"
	"github.com/okian/jvrace/pkg/logger"
)

func (c *cli) racesCmd() *cobra.Command {
	var (
		years   string
		date    string
		dryRun  bool
		workers int
	)
	cmd := &cobra.Command{
		Use:   "races",
		Short: "Merge SE and SR records into race master documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := c.setup(cmd)
			if err != nil {
				return err
			}

			var mode service.Mode
			if date != "" {
				mode = service.ModeIncremental{Date: date}
			} else {
				if years == "" {
					years = cfg.DefaultYears
				}
				ys, err := service.ParseYears(years)
				if err != nil {
					return err
				}
				mode = service.ModeFull{Years: ys}
			}
			if workers <= 0 {
				workers = cfg.Workers
			}

			var cat catalog.Catalog = catalog.Noop{}
			if cfg.IndexDB != "" && !dryRun {
				db, err := catalog.OpenSQLite(ctx, cfg.IndexDB)
				if err != nil {
					return err
				}
				defer db.Close() //nolint:errcheck // read back by later runs only
				cat = db
			}

			log := logger.Named("races")
			out := sink.NewFileSink(cfg.RacesDir, cfg.MastersDir,
				sink.WithDryRun(dryRun), sink.WithLogger(log))
			b := service.NewRaceMasterBuilder(
				service.NewSources(cfg.SEDataDir, cfg.SRDataDir, cfg.UMDataDir),
				out,
				service.WithLogger(log),
				service.WithWorkers(workers),
				service.WithCatalog(cat),
			)

			rep, err := b.Run(ctx, mode)
			exportMetrics(ctx, cfg)
			if err != nil {
				return err
			}
			if err := printJSON(c.stdout, rep); err != nil {
				return err
			}
			if rep.WriteErrors > 0 {
				return fmt.Errorf("%w: %d race documents", errWriteFailures, rep.WriteErrors)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&years, "years", "", "years to rebuild, e.g. 2024, 2020-2026 or 2020,2022 (default default_years)")
	f.StringVar(&date, "date", "", "rebuild only the races of one date (YYYY-MM-DD)")
	f.BoolVar(&dryRun, "dry-run", false, "decode and merge without writing")
	f.IntVar(&workers, "workers", 0, "files decoded in parallel (default workers)")
	cmd.MarkFlagsMutuallyExclusive("years", "date")
	return cmd
}
