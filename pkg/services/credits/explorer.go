package credits

import (
	"context"
	"fmt"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
	"github.com/rs/zerolog"
)

const defaultQueryLimit = 50000

// Explorer runs the full pipeline for one filtered view of the dataset:
// resolve columns, build the predicate, fetch, normalize, aggregate.
type Explorer interface {
	GetCreditReport(ctx context.Context, filters domain.CreditFilters) (*domain.CreditReport, error)
	RefreshColumns(ctx context.Context) (domain.ColumnMap, error)
}

type explorer struct {
	store    socrata.Client
	resolver Resolver
	limit    int
}

func NewExplorer(store socrata.Client, resolver Resolver, limit int) Explorer {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	return &explorer{
		store:    store,
		resolver: resolver,
		limit:    limit,
	}
}

func (e *explorer) GetCreditReport(
	ctx context.Context,
	filters domain.CreditFilters,
) (*domain.CreditReport, error) {
	columns, err := e.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("column resolution failed: %w", err)
	}

	spec := socrata.QuerySpec{
		Where: BuildWhere(filters, columns),
		Limit: e.limit,
	}

	rows, err := e.store.Query(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("remote query failed: %w", err)
	}

	records := Normalize(rows, columns)
	zerolog.Ctx(ctx).Debug().
		Int("rows", len(records)).
		Str("where", spec.Where).
		Msg("normalized remote rows")

	report := Aggregate(records)
	report.Filters = filters
	return report, nil
}

// RefreshColumns drops the memoized column map and resolves it again. This
// is the explicit admin trigger; normal requests only ever read the cache.
func (e *explorer) RefreshColumns(ctx context.Context) (domain.ColumnMap, error) {
	e.resolver.Invalidate()
	columns, err := e.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("column resolution failed: %w", err)
	}
	return columns, nil
}
