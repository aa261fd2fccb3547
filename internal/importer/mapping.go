package importer

import "strings"

// Field is a client attribute a CSV column can map to.
type Field string

const (
	FieldName            Field = "name"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldWallet          Field = "wallet"
	FieldFullName        Field = "full_name"
	FieldStatus          Field = "status"
	FieldTags            Field = "tags"
	FieldNotes           Field = "notes"
	FieldAssignedAgentID Field = "assigned_agent_id"
	FieldLastContactAt   Field = "last_contact_at"
)

// ColumnMapping tells the importer how to find each field in a file.
// Aliases are compared trimmed and case-insensitively against header
// cells; Positional is used when the file has no header.
type ColumnMapping struct {
	Aliases    map[Field][]string
	Positional []Field
}

func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		Aliases: map[Field][]string{
			FieldName:            {"name", "client", "client name", "contact"},
			FieldEmail:           {"email", "e-mail", "email address", "mail"},
			FieldPhone:           {"phone", "phone number", "telephone", "mobile"},
			FieldWallet:          {"wallet", "wallet address"},
			FieldFullName:        {"full_name", "full name", "fullname"},
			FieldStatus:          {"status"},
			FieldTags:            {"tags"},
			FieldNotes:           {"notes"},
			FieldAssignedAgentID: {"assigned_agent_id", "assigned_agent", "agent_id"},
			FieldLastContactAt:   {"last_contact_at", "last_contact"},
		},
		Positional: []Field{
			FieldName, FieldEmail, FieldPhone, FieldWallet,
			FieldFullName, FieldStatus, FieldTags, FieldNotes,
		},
	}
}

// columns maps a field to its index in a record.
type columns map[Field]int

// lookup builds the alias → field index used for header matching.
func (m ColumnMapping) lookup() map[string]Field {
	out := make(map[string]Field)
	for field, aliases := range m.Aliases {
		for _, a := range aliases {
			out[normalizeHeader(a)] = field
		}
	}
	return out
}

// resolveHeader reports whether row looks like a header (cells naming at
// least two distinct known fields) and, if so, where each field lives. The
// first column wins when a field appears twice.
func (m ColumnMapping) resolveHeader(row []string) (columns, bool) {
	lookup := m.lookup()
	cols := make(columns)

	for i, cell := range row {
		field, ok := lookup[normalizeHeader(cell)]
		if !ok {
			continue
		}
		if _, seen := cols[field]; !seen {
			cols[field] = i
		}
	}

	if len(cols) < 2 {
		return nil, false
	}
	return cols, true
}

func (m ColumnMapping) positional() columns {
	cols := make(columns, len(m.Positional))
	for i, f := range m.Positional {
		cols[f] = i
	}
	return cols
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c columns) get(record []string, f Field) string {
	idx, ok := c[f]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
