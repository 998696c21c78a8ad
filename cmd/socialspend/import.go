package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"socialspend/internal/amqp"
	"socialspend/internal/cli"
	"socialspend/internal/report"
	"socialspend/internal/services"
)

type importCmd struct {
	rt     *runtime
	source string
	strict bool
	queue  bool
}

func newImportCmd(rt *runtime) *cobra.Command {
	ic := &importCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX dataset into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE:  ic.run,
	}
	cmd.Flags().StringVar(&ic.source, "source", "", "Source name for the batch (defaults to the file name)")
	cmd.Flags().BoolVar(&ic.strict, "strict", false, "Refuse the file if any row is rejected")
	cmd.Flags().BoolVar(&ic.queue, "queue", false, "Queue the import for socialspend-worker instead of importing now")
	return cmd
}

func (ic *importCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	app, err := cli.OpenApp(ctx, ic.rt.cfg, ic.rt.logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if ic.queue {
		if app.Backend.Publisher == nil {
			return fmt.Errorf("--queue needs the sqlite backend with AMQP_URL set")
		}
		if err := services.CheckImportPath(path); err != nil {
			return fmt.Errorf("queued paths are relative to IMPORT_DIR %s: %w", ic.rt.cfg.ImportDir, err)
		}
		if err := app.Backend.Publisher.PublishImport(ctx, amqp.NewImportRequest(path, ic.source, ic.strict)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued import of %s\n", path)
		return nil
	}

	if app.Importer == nil {
		return fmt.Errorf("the %s backend is read-only; use DATA_BACKEND=sqlite to import", app.Backend.Type)
	}

	res, err := app.Importer.ImportLocalFile(ctx, path, ic.source, ic.strict)
	if err != nil {
		return err
	}

	s := report.Section{
		Title:   "Import " + res.Source,
		Columns: []string{"Line", "Column", "Value", "Problem"},
		Lines: []string{
			fmt.Sprintf("%d records stored in batch %d, %d rows rejected.", res.Records, res.BatchID, len(res.Rejected)),
		},
	}
	for _, rej := range res.Rejected {
		s.Rows = append(s.Rows, []string{strconv.Itoa(rej.Line), rej.Column, rej.Value, rej.Err.Error()})
	}
	if len(s.Rows) == 0 {
		s.Columns = nil
	}

	records, err := app.Dataset.Records(ctx)
	if err != nil {
		return err
	}
	return report.NewReporter(cmd.OutOrStdout()).Handle(report.Single(records, "Dataset import", s))
}
