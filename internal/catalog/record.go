package catalog

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Record is one catalog item: a locally unique id, an owning schema, and a
// mapping from field name to value. Multi-value fields store their entries
// joined with ValueDelimiter. Every field name set on a record must exist in
// its schema.
//
// Records are created empty by an adapter, mutated during normalization, and
// treated as immutable once handed to the caller.
type Record struct {
	id     string
	schema *Schema
	fields map[string]string
}

// NewRecord creates an empty record owned by the schema's collection type.
func NewRecord(schema *Schema) *Record {
	return &Record{
		id:     uuid.NewString(),
		schema: schema,
		fields: make(map[string]string),
	}
}

// ID returns the record's stable local identifier.
func (r *Record) ID() string {
	return r.id
}

// Type returns the owning collection type.
func (r *Record) Type() Type {
	return r.schema.Type()
}

// Schema returns the owning schema.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Field returns the raw value for the named field, or "" when unset.
func (r *Record) Field(name string) string {
	if r == nil {
		return ""
	}
	return r.fields[name]
}

// Values returns the entries of a multi-value field.
func (r *Record) Values(name string) []string {
	return SplitValues(r.Field(name))
}

// SetField stores a value after validating the field against the schema.
// Choice-field values outside the allowed list are rejected so callers extend
// the schema first instead of silently coercing.
func (r *Record) SetField(name, value string) error {
	if !r.schema.HasField(name) {
		return fmt.Errorf("record %s: field %q not in %s schema", r.id, name, r.schema.Type())
	}
	if value == "" {
		delete(r.fields, name)
		return nil
	}
	for _, entry := range SplitValues(value) {
		if !r.schema.allowsValue(name, entry) {
			return fmt.Errorf("record %s: value %q not allowed for field %q", r.id, entry, name)
		}
	}
	r.fields[name] = value
	return nil
}

// SetValues joins entries with the multi-value delimiter and stores them.
func (r *Record) SetValues(name string, values []string) error {
	return r.SetField(name, JoinValues(values))
}

// ClearField removes the named field's value.
func (r *Record) ClearField(name string) {
	delete(r.fields, name)
}

// FieldNames returns the names of populated fields in sorted order.
func (r *Record) FieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether the record has no populated fields.
func (r *Record) IsEmpty() bool {
	return r == nil || len(r.fields) == 0
}

// Clone returns a deep copy sharing the same id and schema.
func (r *Record) Clone() *Record {
	fields := make(map[string]string, len(r.fields))
	for name, value := range r.fields {
		fields[name] = value
	}
	return &Record{id: r.id, schema: r.schema, fields: fields}
}
