package api

import (
	"encoding/json"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
)

// Year marshals as an integer when the upstream value parsed, otherwise as
// the opaque label that was carried through normalization.
type Year struct {
	domain.Year
}

func (y Year) MarshalJSON() ([]byte, error) {
	if y.Known {
		return json.Marshal(y.Value)
	}
	return json.Marshal(y.Label)
}

func (y *Year) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		y.Value = n
		y.Known = true
		return nil
	}
	y.Known = false
	return json.Unmarshal(b, &y.Label)
}

type CreditRecord struct {
	Year           Year    `json:"year"`
	Program        string  `json:"program"`
	Claimed        float64 `json:"claimed"`
	Used           float64 `json:"used"`
	TaxpayerType   string  `json:"taxpayer_type,omitempty"`
	UtilizationPct float64 `json:"utilizationPct"`
}

type Filters struct {
	YearFrom     *int     `json:"year_from,omitempty"`
	YearTo       *int     `json:"year_to,omitempty"`
	Programs     []string `json:"programs,omitempty"`
	TaxpayerType string   `json:"taxpayer_type,omitempty"`
	View         string   `json:"view"`
	Format       string   `json:"format"`
}

type Meta struct {
	Years         []int    `json:"years"`
	Programs      []string `json:"programs"`
	TaxpayerTypes []string `json:"taxpayerTypes"`
	Filters       Filters  `json:"filters"`
}

type Totals struct {
	Claimed        float64 `json:"claimed"`
	Used           float64 `json:"used"`
	UtilizationPct float64 `json:"utilizationPct"`
}

type YearlyAggregate struct {
	Year           int     `json:"year"`
	Claimed        float64 `json:"claimed"`
	Used           float64 `json:"used"`
	UtilizationPct float64 `json:"utilizationPct"`
}

type ProgramTotal struct {
	Program string  `json:"program"`
	Claimed float64 `json:"claimed"`
}

type CreditReport struct {
	OK          bool              `json:"ok"`
	Meta        Meta              `json:"meta"`
	Totals      Totals            `json:"totals"`
	Yearly      []YearlyAggregate `json:"yearly"`
	TopPrograms []ProgramTotal    `json:"topPrograms"`
	Raw         []CreditRecord    `json:"raw,omitempty"`
}

type ColumnMap struct {
	OK      bool              `json:"ok"`
	Columns map[string]string `json:"columns"`
}

type Error struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
