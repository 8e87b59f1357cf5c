package schema

// FieldType selects the inspector control for a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
)

// Field describes one editable attribute in the inspector.
// Key matches the JSON key of the attribute in the document.
type Field struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options,omitempty"`
}

// Attribute keys for node and edge fields.
const (
	FieldDisplayName      = "displayName"
	FieldDescription      = "description"
	FieldJurisdiction     = "jurisdiction"
	FieldRegulator        = "regulator"
	FieldSettlementAccess = "settlementAccess"

	FieldRail            = "rail"
	FieldSettlementSpeed = "settlementSpeed"
	FieldDirection       = "direction"
	FieldLedgerOfRecord  = "ledgerOfRecord"
	FieldNotes           = "notes"
)

// NodeFields returns the inspector fields for a node, in display order.
func NodeFields() []Field {
	return []Field{
		{Key: FieldDisplayName, Label: "Display name", Type: FieldText},
		{Key: FieldDescription, Label: "Description", Type: FieldTextarea},
		{Key: FieldJurisdiction, Label: "Jurisdiction", Type: FieldText},
		{Key: FieldRegulator, Label: "Regulator", Type: FieldText},
		{Key: FieldSettlementAccess, Label: "Settlement access", Type: FieldSelect,
			Options: []string{"Direct", "Indirect", "None"}},
	}
}

// EdgeFields returns the inspector fields for an edge, in display order.
func EdgeFields() []Field {
	return []Field{
		{Key: FieldRail, Label: "Rail", Type: FieldSelect, Options: Rails()},
		{Key: FieldSettlementSpeed, Label: "Settlement speed", Type: FieldSelect, Options: Speeds()},
		{Key: FieldDirection, Label: "Direction", Type: FieldSelect, Options: Directions()},
		{Key: FieldLedgerOfRecord, Label: "Ledger of record", Type: FieldText},
		{Key: FieldNotes, Label: "Notes", Type: FieldTextarea},
	}
}

// FieldByKey finds the field with key in fields.
func FieldByKey(fields []Field, key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
