package socrata

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Column is one entry from the dataset metadata: a display name plus the
// field identifier used in query predicates and keyed rows.
type Column struct {
	Name      string `json:"name"`
	FieldName string `json:"fieldName"`
}

// RowSet is the tagged union of the two wire shapes the upstream host emits:
// a bare JSON array of keyed objects, or an envelope whose data rows are
// positional and must be zipped against the ordered column list from its
// metadata block.
type RowSet struct {
	Columns    []string
	Keyed      []map[string]any
	Positional [][]any
}

type rowEnvelope struct {
	Meta struct {
		View struct {
			Columns []Column `json:"columns"`
		} `json:"view"`
	} `json:"meta"`
	Data [][]any `json:"data"`
}

func (rs *RowSet) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(b, &rs.Keyed)
	}

	var env rowEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	rs.Columns = make([]string, 0, len(env.Meta.View.Columns))
	for _, col := range env.Meta.View.Columns {
		rs.Columns = append(rs.Columns, CanonicalKey(col.FieldName))
	}
	rs.Positional = env.Data
	return nil
}

func (rs *RowSet) Len() int {
	if rs.Keyed != nil {
		return len(rs.Keyed)
	}
	return len(rs.Positional)
}

// Rows flattens either variant into keyed maps with canonical keys.
func (rs *RowSet) Rows() []map[string]any {
	if rs.Keyed != nil {
		out := make([]map[string]any, 0, len(rs.Keyed))
		for _, row := range rs.Keyed {
			m := make(map[string]any, len(row))
			for k, v := range row {
				m[CanonicalKey(k)] = v
			}
			out = append(out, m)
		}
		return out
	}

	out := make([]map[string]any, 0, len(rs.Positional))
	for _, row := range rs.Positional {
		m := make(map[string]any, len(rs.Columns))
		for i, field := range rs.Columns {
			if i < len(row) {
				m[field] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// CanonicalKey strips the quoting characters some endpoints wrap field
// identifiers in and lowercases the result, so that keys compare equal
// across dialects.
func CanonicalKey(field string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(field), "`'\""))
}
