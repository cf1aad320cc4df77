package domain

// ColumnRole names the semantic meaning of a dataset column. The upstream
// dataset does not guarantee stable field names, so roles are bound to
// concrete columns heuristically at runtime.
type ColumnRole string

const (
	RoleYear         ColumnRole = "year"
	RoleClaimed      ColumnRole = "claimed"
	RoleUsed         ColumnRole = "used"
	RoleProgram      ColumnRole = "program"
	RoleTaxpayerType ColumnRole = "taxpayer_type"
)

// ColumnMap binds roles to resolved dataset field names. RoleYear is always
// present in a resolved map; any other role may be absent, in which case
// downstream computation treats it as zero/empty rather than failing.
type ColumnMap map[ColumnRole]string

func (m ColumnMap) Field(role ColumnRole) (string, bool) {
	field, ok := m[role]
	return field, ok
}

// Clone guards the resolver's cached map against caller mutation.
func (m ColumnMap) Clone() ColumnMap {
	out := make(ColumnMap, len(m))
	for role, field := range m {
		out[role] = field
	}
	return out
}
