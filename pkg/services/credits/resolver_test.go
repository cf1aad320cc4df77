package credits

import (
	"context"
	"fmt"
	"testing"

	"github.com/de-tools/credit-atlas/pkg/models/domain"
	"github.com/de-tools/credit-atlas/pkg/store/socrata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Query(ctx context.Context, spec socrata.QuerySpec) (*socrata.RowSet, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*socrata.RowSet), args.Error(1)
}

func (m *mockStore) Metadata(ctx context.Context) ([]socrata.Column, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]socrata.Column), args.Error(1)
}

func fullMetadata() []socrata.Column {
	return []socrata.Column{
		{Name: "Tax Year", FieldName: "tax_year"},
		{Name: "Credit Type", FieldName: "credit_type"},
		{Name: "Amount of Credit Claimed", FieldName: "amount_of_credit_claimed"},
		{Name: "Amount of Credit Used", FieldName: "amount_of_credit_used"},
		{Name: "Taxpayer Type", FieldName: "taxpayer_type"},
	}
}

func TestResolver_ResolvesAllRolesFromMetadata(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return(fullMetadata(), nil).Once()

	resolver := NewResolver(store)
	columns, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.ColumnMap{
		domain.RoleYear:         "tax_year",
		domain.RoleClaimed:      "amount_of_credit_claimed",
		domain.RoleUsed:         "amount_of_credit_used",
		domain.RoleProgram:      "credit_type",
		domain.RoleTaxpayerType: "taxpayer_type",
	}, columns)
	store.AssertExpectations(t)
}

func TestResolver_SpecificPatternBeatsGenericOne(t *testing.T) {
	store := new(mockStore)
	// "year_of_filing" matches the generic year pattern and comes first,
	// but "fiscal_year" matches the more specific one and must win.
	store.On("Metadata", mock.Anything).Return([]socrata.Column{
		{Name: "Year of Filing", FieldName: "year_of_filing"},
		{Name: "Fiscal Year", FieldName: "fiscal_year"},
		{Name: "Credit Type", FieldName: "credit_type"},
		{Name: "Claimed Amount", FieldName: "claimed_amount"},
		{Name: "Used Amount", FieldName: "used_amount"},
	}, nil).Once()

	resolver := NewResolver(store)
	columns, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fiscal_year", columns[domain.RoleYear])
}

func TestResolver_Memoized(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return(fullMetadata(), nil).Once()

	resolver := NewResolver(store)

	first, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Once() on the metadata expectation guarantees no second fetch.
	store.AssertExpectations(t)
}

func TestResolver_InvalidateForcesRefetch(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return(fullMetadata(), nil).Twice()

	resolver := NewResolver(store)

	_, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	resolver.Invalidate()

	_, err = resolver.Resolve(context.Background())
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestResolver_SampleFallbackWhenMetadataIncomplete(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return([]socrata.Column{
		{Name: "Tax Year", FieldName: "tax_year"},
	}, nil).Once()
	store.On("Query", mock.Anything, socrata.QuerySpec{Limit: 1}).Return(&socrata.RowSet{
		Keyed: []map[string]any{{
			"tax_year":       "2020",
			"credit_type":    "Film",
			"amount_claimed": "10",
			"amount_used":    "5",
		}},
	}, nil).Once()

	resolver := NewResolver(store)
	columns, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "credit_type", columns[domain.RoleProgram])
	assert.Equal(t, "amount_claimed", columns[domain.RoleClaimed])
	assert.Equal(t, "amount_used", columns[domain.RoleUsed])
	store.AssertExpectations(t)
}

func TestResolver_MetadataFailureIsNotFatal(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return(nil, fmt.Errorf("metadata endpoint down")).Once()
	store.On("Query", mock.Anything, socrata.QuerySpec{Limit: 1}).Return(&socrata.RowSet{
		Keyed: []map[string]any{{
			"tax_year":       "2020",
			"credit_type":    "Film",
			"amount_claimed": "10",
			"amount_used":    "5",
		}},
	}, nil).Once()

	resolver := NewResolver(store)
	columns, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tax_year", columns[domain.RoleYear])
}

func TestResolver_MissingYearIsFatal(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return([]socrata.Column{
		{Name: "Credit Type", FieldName: "credit_type"},
	}, nil).Once()
	store.On("Query", mock.Anything, socrata.QuerySpec{Limit: 1}).Return(&socrata.RowSet{
		Keyed: []map[string]any{{"credit_type": "Film", "amount_claimed": "10", "amount_used": "1"}},
	}, nil).Once()

	resolver := NewResolver(store)
	_, err := resolver.Resolve(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "year column")
}

func TestResolver_OptionalRolesMayStayUnresolved(t *testing.T) {
	store := new(mockStore)
	store.On("Metadata", mock.Anything).Return([]socrata.Column{
		{Name: "Tax Year", FieldName: "tax_year"},
	}, nil).Once()
	store.On("Query", mock.Anything, socrata.QuerySpec{Limit: 1}).Return(&socrata.RowSet{
		Keyed: []map[string]any{{"tax_year": "2020"}},
	}, nil).Once()

	resolver := NewResolver(store)
	columns, err := resolver.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tax_year", columns[domain.RoleYear])
	_, hasProgram := columns.Field(domain.RoleProgram)
	assert.False(t, hasProgram)
}
