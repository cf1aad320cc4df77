package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/services/credits"
	svcexport "github.com/de-tools/credit-atlas/pkg/services/export"
	"github.com/de-tools/credit-atlas/pkg/terminal/export"

	"github.com/spf13/cobra"
)

type SummaryCmd struct {
	yearFrom     int
	yearTo       int
	programs     []string
	taxpayerType string
	format       string
	output       string
	explorer     credits.Explorer
	reporter     *export.Reporter
}

func NewSummaryCmd(explorer credits.Explorer, reporter *export.Reporter) *cobra.Command {
	sc := &SummaryCmd{explorer: explorer, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Fetch and summarize tax credit utilization",
		RunE:  sc.run,
	}

	cmd.Flags().IntVar(&sc.yearFrom, "year-from", 0, "Lower year bound (inclusive)")
	cmd.Flags().IntVar(&sc.yearTo, "year-to", 0, "Upper year bound (inclusive)")
	cmd.Flags().StringSliceVar(&sc.programs, "program", nil, "Programs to include (repeatable)")
	cmd.Flags().StringVar(&sc.taxpayerType, "taxpayer-type", "", "Taxpayer type to filter on")
	cmd.Flags().StringVar(&sc.format, "format", "table", "Output format: table, csv or xlsx")
	cmd.Flags().StringVar(&sc.output, "output", "", "Output file (defaults to stdout for csv)")

	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	report, err := sc.explorer.GetCreditReport(ctx, sc.filters())
	if err != nil {
		return fmt.Errorf("failed to build credit report: %w", err)
	}

	switch sc.format {
	case "table":
		return sc.reporter.Handle(report)
	case "csv":
		w, closeFn, err := sc.outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()
		return svcexport.WriteCSV(w, report.Records)
	case "xlsx":
		if sc.output == "" {
			return fmt.Errorf("xlsx output requires --output")
		}
		w, closeFn, err := sc.outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()
		return svcexport.WriteXLSX(w, report)
	default:
		return fmt.Errorf("unsupported format %q (want table, csv or xlsx)", sc.format)
	}
}

func (sc *SummaryCmd) filters() domain.CreditFilters {
	filters := domain.CreditFilters{
		Programs:     sc.programs,
		TaxpayerType: sc.taxpayerType,
		View:         domain.ViewRaw,
		Format:       domain.FormatJSON,
	}
	if sc.yearFrom != 0 {
		filters.YearFrom = &sc.yearFrom
	}
	if sc.yearTo != 0 {
		filters.YearTo = &sc.yearTo
	}
	return filters
}

func (sc *SummaryCmd) outputWriter() (*os.File, func(), error) {
	if sc.output == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(sc.output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", sc.output, err)
	}
	return f, func() { _ = f.Close() }, nil
}
