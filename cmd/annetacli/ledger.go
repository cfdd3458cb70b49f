package main

import (
	"fmt"
	"os"
	"time"

	"anneta.link/repositories"
	"anneta.link/services"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return services.NewExportService().Export(cmd.Context(), w)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import a ledger JSON dump into an empty database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			if err := services.NewExportService().Import(cmd.Context(), f); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Println("Import complete")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var fromStr, toStr string
	var excludeKeys []string
	var externalOnly, internalOnly bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print finalized donation totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repositories.StatsFilter{ExcludeOrganizationKeys: excludeKeys}
			if fromStr != "" {
				from, err := time.Parse("2006-01-02", fromStr)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				filter.From = &from
			}
			if toStr != "" {
				to, err := time.Parse("2006-01-02", toStr)
				if err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
				filter.To = &to
			}
			if externalOnly && internalOnly {
				return fmt.Errorf("--external and --internal are mutually exclusive")
			}
			if externalOnly {
				v := true
				filter.External = &v
			}
			if internalOnly {
				v := false
				filter.External = &v
			}

			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			stats, err := services.NewStatsService().FinalizedStats(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Printf("Finalized donations: %d\n", stats.DonationCount)
			fmt.Printf("Total: %d.%02d EUR\n", stats.TotalCents/100, stats.TotalCents%100)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&excludeKeys, "exclude", nil, "organization keys to exclude")
	cmd.Flags().BoolVar(&externalOnly, "external", false, "count only external donations")
	cmd.Flags().BoolVar(&internalOnly, "internal", false, "count only non-external donations")

	return cmd
}
