package credits

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/de-tools/credit-atlas/pkg/adapters"
	"github.com/de-tools/credit-atlas/pkg/models/api"
	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/services/credits"
	"github.com/de-tools/credit-atlas/pkg/services/export"
	"github.com/rs/zerolog"
)

type Handler struct {
	explorer credits.Explorer
}

func NewHandler(explorer credits.Explorer) *Handler {
	return &Handler{explorer: explorer}
}

// GetCredits serves GET /api/ny-credits in json, csv, or xlsx form.
func (h *Handler) GetCredits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	filters := parseFilters(r)
	report, err := h.explorer.GetCreditReport(ctx, filters)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build credit report")
		writeError(w, err)
		return
	}

	switch filters.Format {
	case domain.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename=ny-credits.csv`)
		if err := export.WriteCSV(w, report.Records); err != nil {
			logger.Error().Err(err).Msg("failed to write CSV export")
		}
	case domain.FormatXLSX:
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename=ny-credits.xlsx`)
		if err := export.WriteXLSX(w, report); err != nil {
			logger.Error().Err(err).Msg("failed to write XLSX export")
		}
	default:
		includeRaw := filters.View == domain.ViewRaw
		writeJSON(w, http.StatusOK, adapters.MapCreditReportDomainToApi(report, includeRaw))
	}
}

// RefreshColumns serves POST /api/ny-credits/columns/refresh, the admin
// trigger that re-runs heuristic column discovery.
func (h *Handler) RefreshColumns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	columns, err := h.explorer.RefreshColumns(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to refresh column map")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adapters.MapColumnMapDomainToApi(columns))
}

func parseFilters(r *http.Request) domain.CreditFilters {
	q := r.URL.Query()

	filters := domain.CreditFilters{
		YearFrom:     parseIntParam(q.Get("year_from")),
		YearTo:       parseIntParam(q.Get("year_to")),
		TaxpayerType: strings.TrimSpace(q.Get("taxpayer_type")),
		View:         domain.ViewAggregated,
		Format:       domain.FormatJSON,
	}

	for _, program := range strings.Split(q.Get("program"), ",") {
		if program = strings.TrimSpace(program); program != "" {
			filters.Programs = append(filters.Programs, program)
		}
	}

	if q.Get("view") == string(domain.ViewRaw) {
		filters.View = domain.ViewRaw
	}
	switch q.Get("format") {
	case string(domain.FormatCSV):
		filters.Format = domain.FormatCSV
	case string(domain.FormatXLSX):
		filters.Format = domain.FormatXLSX
	}

	return filters
}

// parseIntParam treats absent or malformed values as "filter not set".
func parseIntParam(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError converts every request-level failure into the uniform
// {ok:false, error} envelope with HTTP 500.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, api.Error{
		OK:    false,
		Error: fmt.Sprintf("%v", err),
	})
}
