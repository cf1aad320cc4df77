package credits

import (
	"sort"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
)

const (
	topProgramsLimit = 10

	// unknownProgram buckets rows whose program column is unresolved or
	// empty. The bucket counts toward rankings but never appears in the
	// filter-option list.
	unknownProgram = "Unknown"
)

// Aggregate computes the full report from normalized records. Pure function;
// all I/O happens before it.
func Aggregate(records []domain.CreditRecord) *domain.CreditReport {
	report := &domain.CreditReport{
		Years:         []int{},
		Programs:      []string{},
		TaxpayerTypes: []string{},
		Yearly:        []domain.YearlyAggregate{},
		TopPrograms:   []domain.ProgramTotal{},
		Records:       records,
	}

	yearly := map[int]*domain.YearlyAggregate{}
	programTotals := map[string]float64{}
	var programOrder []string
	programSeen := map[string]bool{}
	taxpayerSeen := map[string]bool{}
	var taxpayerTypes []string

	for _, r := range records {
		report.Totals.Claimed += r.Claimed
		report.Totals.Used += r.Used

		if r.Year.Known {
			agg, ok := yearly[r.Year.Value]
			if !ok {
				agg = &domain.YearlyAggregate{Year: r.Year.Value}
				yearly[r.Year.Value] = agg
			}
			agg.Claimed += r.Claimed
			agg.Used += r.Used
		}

		program := r.Program
		if program == "" {
			program = unknownProgram
		} else if !programSeen[program] {
			programSeen[program] = true
			report.Programs = append(report.Programs, program)
		}
		if _, ok := programTotals[program]; !ok {
			programOrder = append(programOrder, program)
		}
		programTotals[program] += r.Claimed

		if r.TaxpayerType != "" && !taxpayerSeen[r.TaxpayerType] {
			taxpayerSeen[r.TaxpayerType] = true
			taxpayerTypes = append(taxpayerTypes, r.TaxpayerType)
		}
	}

	report.Totals.UtilizationPct = utilization(report.Totals.Used, report.Totals.Claimed)

	// Yearly percentages come from the summed totals, not from averaging
	// per-row percentages, so small denominators cannot skew them.
	years := make([]int, 0, len(yearly))
	for year := range yearly {
		years = append(years, year)
	}
	sort.Ints(years)
	for _, year := range years {
		agg := yearly[year]
		agg.UtilizationPct = utilization(agg.Used, agg.Claimed)
		report.Yearly = append(report.Yearly, *agg)
	}

	report.Years = contiguousYears(years)
	report.TopPrograms = rankPrograms(programOrder, programTotals)
	sort.Strings(report.Programs)
	sort.Strings(taxpayerTypes)
	report.TaxpayerTypes = taxpayerTypes
	if report.TaxpayerTypes == nil {
		report.TaxpayerTypes = []string{}
	}

	return report
}

func utilization(used, claimed float64) float64 {
	if claimed == 0 {
		return 0
	}
	return used / claimed * 100
}

// contiguousYears expands observed years into the full min..max range so a
// selector can offer boundary years that happen to have no records.
func contiguousYears(observed []int) []int {
	if len(observed) == 0 {
		return []int{}
	}
	minYear := observed[0]
	maxYear := observed[len(observed)-1]
	years := make([]int, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		years = append(years, y)
	}
	return years
}

// rankPrograms sorts programs by summed claimed amount, descending, keeping
// encounter order on ties, and truncates to the top 10.
func rankPrograms(order []string, totals map[string]float64) []domain.ProgramTotal {
	ranked := make([]domain.ProgramTotal, 0, len(order))
	for _, program := range order {
		ranked = append(ranked, domain.ProgramTotal{
			Program: program,
			Claimed: totals[program],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Claimed > ranked[j].Claimed
	})
	if len(ranked) > topProgramsLimit {
		ranked = ranked[:topProgramsLimit]
	}
	return ranked
}
