package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"socialspend/internal/analytics"
	"socialspend/internal/cli"
	"socialspend/internal/core"
	"socialspend/internal/report"
)

const defaultFocusBank = "Bank of America"

// reportCmd holds the flags shared by the read-only report commands.
type reportCmd struct {
	rt      *runtime
	bank    string
	yearA   int
	yearB   int
	year    int
	partial bool
}

// withRecords opens the configured backend, loads the dataset and renders the
// report built by fn.
func (rc *reportCmd) withRecords(cmd *cobra.Command, fn func([]core.SpendRecord) (*report.Report, error)) error {
	ctx := cmd.Context()
	app, err := cli.OpenApp(ctx, rc.rt.cfg, rc.rt.logger)
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.Dataset.Snapshot(ctx)
	if err != nil {
		return err
	}
	if n := len(snap.Rejected); n > 0 {
		rc.rt.logger.Warn("Dataset rows rejected", "count", n, "sources", snap.Sources)
	}

	r, err := fn(snap.Records)
	if err != nil {
		return err
	}
	return report.NewReporter(cmd.OutOrStdout()).Handle(r)
}

func newReportCmd(rt *runtime) *cobra.Command {
	rc := &reportCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the full spend report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.withRecords(cmd, func(records []core.SpendRecord) (*report.Report, error) {
				return report.Full(records, rc.bank), nil
			})
		},
	}
	cmd.Flags().StringVar(&rc.bank, "bank", defaultFocusBank, "Bank used for platform expansion and bank insights")
	return cmd
}

func newYoYCmd(rt *runtime) *cobra.Command {
	rc := &reportCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "yoy",
		Short: "Compare two years per bank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.withRecords(cmd, func(records []core.SpendRecord) (*report.Report, error) {
				yearA, yearB := rc.yearA, rc.yearB
				if yearB == 0 {
					years := analytics.UniqueYears(records)
					if len(years) == 0 {
						return report.Single(records, "Year over year"), nil
					}
					yearB = years[len(years)-1]
				}
				if yearA == 0 {
					yearA = yearB - 1
				}
				if yearA >= yearB {
					return nil, fmt.Errorf("--year-a %d must be before --year-b %d", yearA, yearB)
				}
				return report.Single(records, "Year over year", report.YoY(records, yearA, yearB, rc.partial)), nil
			})
		},
	}
	cmd.Flags().IntVar(&rc.yearA, "year-a", 0, "Earlier year (defaults to the year before --year-b)")
	cmd.Flags().IntVar(&rc.yearB, "year-b", 0, "Later year (defaults to the latest year)")
	cmd.Flags().BoolVar(&rc.partial, "partial", false, "Only compare the months present in the later year")
	return cmd
}

func newWaveCmd(rt *runtime) *cobra.Command {
	rc := &reportCmd{rt: rt}
	return &cobra.Command{
		Use:   "wave",
		Short: "Print the month-by-month wave tables of the last two years",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.withRecords(cmd, func(records []core.SpendRecord) (*report.Report, error) {
				sections, _ := report.Wave(records)
				return report.Single(records, "Wave", sections...), nil
			})
		},
	}
}

func newInsightsCmd(rt *runtime) *cobra.Command {
	rc := &reportCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Print timeline and bank insights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.withRecords(cmd, func(records []core.SpendRecord) (*report.Report, error) {
				return report.Single(records, "Insights", report.Insights(records, rc.bank)...), nil
			})
		},
	}
	cmd.Flags().StringVar(&rc.bank, "bank", defaultFocusBank, "Bank to describe")
	return cmd
}

func newPlatformsCmd(rt *runtime) *cobra.Command {
	rc := &reportCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Print a bank's platform split for one year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.withRecords(cmd, func(records []core.SpendRecord) (*report.Report, error) {
				year := rc.year
				if year == 0 {
					latest, _, ok := analytics.LatestDate(records)
					if !ok {
						return report.Single(records, "Platforms"), nil
					}
					year = latest
				}
				return report.Single(records, rc.bank+" platforms", report.Platforms(records, rc.bank, year)), nil
			})
		},
	}
	cmd.Flags().StringVar(&rc.bank, "bank", "", "Bank to split by platform")
	cmd.Flags().IntVar(&rc.year, "year", 0, "Year (defaults to the latest year)")
	_ = cmd.MarkFlagRequired("bank")
	return cmd
}
