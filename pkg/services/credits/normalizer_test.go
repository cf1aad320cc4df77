package credits

import (
	"encoding/json"
	"testing"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = domain.ColumnMap{
	domain.RoleYear:         "tax_year",
	domain.RoleClaimed:      "amount_claimed",
	domain.RoleUsed:         "amount_used",
	domain.RoleProgram:      "credit_type",
	domain.RoleTaxpayerType: "taxpayer_type",
}

func keyedRows(t *testing.T, payload string) *socrata.RowSet {
	t.Helper()
	var rows socrata.RowSet
	require.NoError(t, json.Unmarshal([]byte(payload), &rows))
	return &rows
}

func TestNormalize_KeyedRows(t *testing.T) {
	rows := keyedRows(t, `[
		{"tax_year": "2020", "credit_type": "Film", "amount_claimed": "1000", "amount_used": "250", "taxpayer_type": "Corporate"}
	]`)

	records := Normalize(rows, testColumns)

	require.Len(t, records, 1)
	assert.Equal(t, 2020, records[0].Year.Value)
	assert.True(t, records[0].Year.Known)
	assert.Equal(t, "Film", records[0].Program)
	assert.Equal(t, 1000.0, records[0].Claimed)
	assert.Equal(t, 250.0, records[0].Used)
	assert.Equal(t, "Corporate", records[0].TaxpayerType)
	assert.Equal(t, 25.0, records[0].UtilizationPct)
}

func TestNormalize_PositionalEnvelope(t *testing.T) {
	rows := keyedRows(t, `{
		"meta": {"view": {"columns": [
			{"name": "Tax Year", "fieldName": "tax_year"},
			{"name": "Credit Type", "fieldName": "`+"`credit_type`"+`"},
			{"name": "Amount Claimed", "fieldName": "amount_claimed"},
			{"name": "Amount Used", "fieldName": "amount_used"}
		]}},
		"data": [["2021", "Brownfield", 500, 100]]
	}`)

	records := Normalize(rows, testColumns)

	require.Len(t, records, 1)
	assert.Equal(t, 2021, records[0].Year.Value)
	// Quoted field identifiers are canonicalized before zipping.
	assert.Equal(t, "Brownfield", records[0].Program)
	assert.Equal(t, 500.0, records[0].Claimed)
	assert.Equal(t, 100.0, records[0].Used)
}

func TestNormalize_GarbageAmountsCoerceToZero(t *testing.T) {
	rows := keyedRows(t, `[
		{"tax_year": 2020, "credit_type": "Film", "amount_claimed": "not a number", "amount_used": null}
	]`)

	records := Normalize(rows, testColumns)

	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].Claimed)
	assert.Equal(t, 0.0, records[0].Used)
	assert.Equal(t, 0.0, records[0].UtilizationPct)
}

func TestNormalize_CurrencyFormattedAmounts(t *testing.T) {
	rows := keyedRows(t, `[
		{"tax_year": 2020, "credit_type": "Film", "amount_claimed": "$1,234.50", "amount_used": "1,000"}
	]`)

	records := Normalize(rows, testColumns)

	require.Len(t, records, 1)
	assert.Equal(t, 1234.5, records[0].Claimed)
	assert.Equal(t, 1000.0, records[0].Used)
}

func TestNormalize_MissingYearBecomesOpaqueLabel(t *testing.T) {
	rows := keyedRows(t, `[
		{"credit_type": "Film", "amount_claimed": 10, "amount_used": 5}
	]`)

	records := Normalize(rows, testColumns)

	require.Len(t, records, 1)
	assert.False(t, records[0].Year.Known)
	assert.Equal(t, "unknown", records[0].Year.String())
}

func TestNormalize_NonNumericYearKeptAsLabel(t *testing.T) {
	rows := keyedRows(t, `[
		{"tax_year": "FY 2019/20", "credit_type": "Film", "amount_claimed": 10, "amount_used": 5}
	]`)

	records := Normalize(rows, testColumns)

	require.Len(t, records, 1)
	assert.False(t, records[0].Year.Known)
	assert.Equal(t, "FY 2019/20", records[0].Year.Label)
}

func TestNormalize_UnresolvedRolesDegradeGracefully(t *testing.T) {
	columns := domain.ColumnMap{domain.RoleYear: "tax_year"}
	rows := keyedRows(t, `[
		{"tax_year": 2020, "credit_type": "Film", "amount_claimed": 10}
	]`)

	records := Normalize(rows, columns)

	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].Claimed)
	assert.Equal(t, "", records[0].Program)
	assert.Equal(t, "", records[0].TaxpayerType)
}

func TestParseYear_FloatFormattedYear(t *testing.T) {
	y := domain.ParseYear("2020.0")
	assert.True(t, y.Known)
	assert.Equal(t, 2020, y.Value)
}
