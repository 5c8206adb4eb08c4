package models

// CustomFieldMapping binds a custom field, found by its display name, to the
// attribute it is printed under.
type CustomFieldMapping struct {
	Key       string `json:"key" toml:"key"`
	FieldName string `json:"name" toml:"name"`
	Attribute string `json:"attribute,omitempty" toml:"attribute"`
}

// AttributeName returns the configured attribute or "cf_<field name>".
func (m CustomFieldMapping) AttributeName() string {
	if m.Attribute != "" {
		return m.Attribute
	}
	return "cf_" + m.FieldName
}
