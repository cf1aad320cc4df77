package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Year is either a parsed calendar/tax year or, when the upstream value
// cannot be read as an integer, an opaque label carried through unchanged.
type Year struct {
	Value int
	Label string
	Known bool
}

func ParseYear(v any) Year {
	if v == nil {
		return Year{Label: "unknown"}
	}

	raw := strings.TrimSpace(fmt.Sprint(v))
	if raw == "" {
		return Year{Label: "unknown"}
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return Year{Value: n, Known: true}
	}
	// Some exports ship years as "2020.0".
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) {
		return Year{Value: int(f), Known: true}
	}

	return Year{Label: raw}
}

func (y Year) String() string {
	if y.Known {
		return strconv.Itoa(y.Value)
	}
	return y.Label
}

// CreditRecord is the canonical row shape every upstream wire format is
// normalized into before aggregation.
type CreditRecord struct {
	Year           Year
	Program        string
	Claimed        float64
	Used           float64
	TaxpayerType   string
	UtilizationPct float64
}

type YearlyAggregate struct {
	Year           int
	Claimed        float64
	Used           float64
	UtilizationPct float64
}

type ProgramTotal struct {
	Program string
	Claimed float64
}

type CreditTotals struct {
	Claimed        float64
	Used           float64
	UtilizationPct float64
}

// CreditReport is the full aggregation result for one filtered fetch.
// Records always holds the normalized rows; whether they are exposed to the
// caller is a serialization concern.
type CreditReport struct {
	Years         []int
	Programs      []string
	TaxpayerTypes []string
	Filters       CreditFilters
	Totals        CreditTotals
	Yearly        []YearlyAggregate
	TopPrograms   []ProgramTotal
	Records       []CreditRecord
}
