package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
)

type TableConfig struct {
	YearWidth    int
	AmountWidth  int
	PercentWidth int
	ProgramWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		YearWidth:    8,
		AmountWidth:  18,
		PercentWidth: 10,
		ProgramWidth: 48,
	}
}

// Reporter renders a credit report as a plain-text table for the CLI.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(report *domain.CreditReport) error {
	funcMap := template.FuncMap{
		"yearlyRow": func(year any, claimed, used, pct float64) string {
			return fmt.Sprintf("| %-*v | %*.2f | %*.2f | %*.1f |",
				c.config.YearWidth, year,
				c.config.AmountWidth, claimed,
				c.config.AmountWidth, used,
				c.config.PercentWidth, pct)
		},
		"yearlyHeader": func() string {
			return fmt.Sprintf("| %-*s | %*s | %*s | %*s |",
				c.config.YearWidth, "Year",
				c.config.AmountWidth, "Claimed",
				c.config.AmountWidth, "Used",
				c.config.PercentWidth, "Util %")
		},
		"yearlySeparator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.YearWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2),
				strings.Repeat("-", c.config.PercentWidth+2))
		},
		"programRow": func(program string, claimed float64) string {
			return fmt.Sprintf("| %-*s | %*.2f |",
				c.config.ProgramWidth, program,
				c.config.AmountWidth, claimed)
		},
		"programSeparator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.ProgramWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2))
		},
		"yearRange": func(years []int) string {
			if len(years) == 0 {
				return "n/a"
			}
			return fmt.Sprintf("%d to %d", years[0], years[len(years)-1])
		},
	}

	tmpl := `
NY Tax Credit Utilization ({{yearRange .Years}})

Rows: {{len .Records}}
Total Claimed: {{printf "%.2f" .Totals.Claimed}}
Total Used: {{printf "%.2f" .Totals.Used}}
Utilization: {{printf "%.1f" .Totals.UtilizationPct}}%

=== Yearly Totals ===
{{yearlySeparator}}
{{yearlyHeader}}
{{yearlySeparator}}
{{range .Yearly}}{{yearlyRow .Year .Claimed .Used .UtilizationPct}}
{{end}}{{yearlySeparator}}

=== Top Programs by Claimed Amount ===
{{programSeparator}}
{{range .TopPrograms}}{{programRow .Program .Claimed}}
{{end}}{{programSeparator}}
`

	t, err := template.New("credit-report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
