package credits

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// roleMatcher binds a semantic role to an ordered pattern list, most
// specific first. The first pattern that matches a candidate's field
// identifier or display name wins the role.
type roleMatcher struct {
	role     domain.ColumnRole
	patterns []*regexp.Regexp
}

var roleMatchers = []roleMatcher{
	{
		role: domain.RoleYear,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(calendar|tax|fiscal)[_\s]*year`),
			regexp.MustCompile(`(?i)^year$`),
			regexp.MustCompile(`(?i)year`),
		},
	},
	{
		role: domain.RoleClaimed,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(amount|amt)[_\s]*(of[_\s]*)?credits?[_\s]*claim`),
			regexp.MustCompile(`(?i)claim(ed)?[_\s]*(amount|amt)`),
			regexp.MustCompile(`(?i)claim`),
		},
	},
	{
		role: domain.RoleUsed,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(amount|amt)[_\s]*(of[_\s]*)?credits?[_\s]*used`),
			regexp.MustCompile(`(?i)used[_\s]*(amount|amt)`),
			regexp.MustCompile(`(?i)used`),
		},
	},
	{
		role: domain.RoleProgram,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)credit[_\s]*(type|name|program)`),
			regexp.MustCompile(`(?i)program`),
			regexp.MustCompile(`(?i)^credit$`),
		},
	},
	{
		role: domain.RoleTaxpayerType,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)taxpayer[_\s]*type`),
			regexp.MustCompile(`(?i)(filer|filing)[_\s]*type`),
			regexp.MustCompile(`(?i)taxpayer`),
		},
	},
}

// requiredRoles must all be bound before resolution skips the sample-row
// fallback. Only RoleYear is fatal when it stays unbound.
var requiredRoles = []domain.ColumnRole{
	domain.RoleYear,
	domain.RoleClaimed,
	domain.RoleUsed,
	domain.RoleProgram,
}

// Resolver discovers which dataset columns hold which semantic roles. The
// upstream dataset does not keep field names stable, so the binding is
// heuristic: metadata columns first, then the keys of a one-row sample.
// Resolution happens once and is cached for the resolver's lifetime.
type Resolver interface {
	Resolve(ctx context.Context) (domain.ColumnMap, error)
	Invalidate()
}

type resolver struct {
	store socrata.Client

	group  singleflight.Group
	mu     sync.RWMutex
	cached domain.ColumnMap
}

func NewResolver(store socrata.Client) Resolver {
	return &resolver{store: store}
}

func (r *resolver) Resolve(ctx context.Context) (domain.ColumnMap, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return cached.Clone(), nil
	}

	v, err, _ := r.group.Do("columns", func() (any, error) {
		columns, err := r.resolve(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cached = columns
		r.mu.Unlock()
		return columns, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.ColumnMap).Clone(), nil
}

// Invalidate drops the cached mapping so the next Resolve re-discovers it.
// Wired to the admin refresh endpoint and used by tests.
func (r *resolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *resolver) resolve(ctx context.Context) (domain.ColumnMap, error) {
	logger := zerolog.Ctx(ctx)
	columns := domain.ColumnMap{}

	metadata, err := r.store.Metadata(ctx)
	if err != nil {
		// Metadata being down is not fatal; the sample fallback still runs.
		logger.Warn().Err(err).Msg("dataset metadata unavailable, relying on sample row")
		metadata = nil
	}

	candidates := make([]candidate, 0, len(metadata))
	for _, col := range metadata {
		candidates = append(candidates, candidate{
			field: socrata.CanonicalKey(col.FieldName),
			name:  col.Name,
		})
	}
	bindRoles(columns, candidates)

	if missingRequired(columns) {
		if err := r.resolveFromSample(ctx, columns); err != nil {
			logger.Warn().Err(err).Msg("sample row fetch failed during column resolution")
		}
	}

	if _, ok := columns[domain.RoleYear]; !ok {
		return nil, fmt.Errorf("unable to identify a year column; dataset cannot be interpreted")
	}

	logger.Info().
		Int("resolved", len(columns)).
		Str("year_column", columns[domain.RoleYear]).
		Msg("dataset columns resolved")

	return columns, nil
}

// resolveFromSample fetches a single row and re-runs the pattern tables
// against its observed keys, filling only still-unbound roles.
func (r *resolver) resolveFromSample(ctx context.Context, columns domain.ColumnMap) error {
	sample, err := r.store.Query(ctx, socrata.QuerySpec{Limit: 1})
	if err != nil {
		return err
	}

	rows := sample.Rows()
	if len(rows) == 0 {
		return fmt.Errorf("sample query returned no rows")
	}

	keys := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	candidates := make([]candidate, 0, len(keys))
	for _, key := range keys {
		candidates = append(candidates, candidate{field: key})
	}
	bindRoles(columns, candidates)
	return nil
}

type candidate struct {
	field string
	name  string
}

// bindRoles fills still-unbound roles from the candidate set. Pattern order
// within a role is the priority order: a candidate matching an earlier
// pattern always beats one matching a later pattern, regardless of where it
// sits in the candidate list. Roles already bound never move.
func bindRoles(columns domain.ColumnMap, candidates []candidate) {
	for _, m := range roleMatchers {
		if _, bound := columns[m.role]; bound {
			continue
		}
		for _, p := range m.patterns {
			field := ""
			for _, c := range candidates {
				if c.field == "" {
					continue
				}
				if p.MatchString(c.field) || (c.name != "" && p.MatchString(c.name)) {
					field = c.field
					break
				}
			}
			if field != "" {
				columns[m.role] = field
				break
			}
		}
	}
}

func missingRequired(columns domain.ColumnMap) bool {
	for _, role := range requiredRoles {
		if _, ok := columns[role]; !ok {
			return true
		}
	}
	return false
}
