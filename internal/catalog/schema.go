package catalog

import (
	"fmt"
	"strings"
	"sync"
)

// FieldWeight pairs a field name with its contribution to SameEntry scoring.
// Weights live in an ordered slice so scoring never depends on map iteration.
type FieldWeight struct {
	Field  string
	Weight float64
}

// Schema is the ordered set of allowed fields for one collection type.
// Field lookup and value-list reads take a shared lock; mutations (adding
// fields, extending allowed lists) take the exclusive lock.
type Schema struct {
	typ Type

	mu          sync.RWMutex
	fields      []*Field
	byName      map[string]*Field
	identifiers []string
	weights     []FieldWeight
}

// NewSchema creates an empty schema for the collection type.
func NewSchema(typ Type) *Schema {
	return &Schema{
		typ:    typ,
		byName: make(map[string]*Field),
	}
}

// Type returns the owning collection type.
func (s *Schema) Type() Type {
	return s.typ
}

// AddField appends a field definition. Field names are unique per schema.
func (s *Schema) AddField(field Field) error {
	name := strings.TrimSpace(field.Name)
	if name == "" {
		return fmt.Errorf("schema %s: field name required", s.typ)
	}
	field.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("schema %s: duplicate field %q", s.typ, name)
	}
	stored := field
	stored.Allowed = append([]string(nil), field.Allowed...)
	s.fields = append(s.fields, &stored)
	s.byName[name] = &stored
	return nil
}

// Fields returns copies of the field definitions in declaration order.
func (s *Schema) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Field, 0, len(s.fields))
	for _, field := range s.fields {
		copied := *field
		copied.Allowed = append([]string(nil), field.Allowed...)
		out = append(out, copied)
	}
	return out
}

// FieldByName looks up a field definition by name.
func (s *Schema) FieldByName(name string) (Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	field, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	copied := *field
	copied.Allowed = append([]string(nil), field.Allowed...)
	return copied, true
}

// HasField reports whether the schema defines the named field.
func (s *Schema) HasField(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[name]
	return ok
}

// Allowed returns the current allowed value list for a choice field.
func (s *Schema) Allowed(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	field, ok := s.byName[name]
	if !ok {
		return nil
	}
	return append([]string(nil), field.Allowed...)
}

// ExtendAllowed adds a value to a choice field's allowed list if it is not
// already present. Returns true when the list grew. Adapters call this when a
// source reports a valid value the schema does not yet know, rather than
// dropping the value.
func (s *Schema) ExtendAllowed(name, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	field, ok := s.byName[name]
	if !ok || field.Kind != KindChoice {
		return false
	}
	for _, existing := range field.Allowed {
		if existing == value {
			return false
		}
	}
	field.Allowed = append(field.Allowed, value)
	return true
}

// allowsValue reports whether a choice field accepts the value. Non-choice
// fields accept anything.
func (s *Schema) allowsValue(name, value string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	field, ok := s.byName[name]
	if !ok {
		return false
	}
	if field.Kind != KindChoice || value == "" {
		return true
	}
	for _, allowed := range field.Allowed {
		if allowed == value {
			return true
		}
	}
	return false
}

// SetIdentifiers declares the fields whose exact match is near-certain proof
// of record identity.
func (s *Schema) SetIdentifiers(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identifiers = append([]string(nil), names...)
}

// IdentifierFields returns the identifier field names in declaration order.
func (s *Schema) IdentifierFields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.identifiers...)
}

// IsIdentifier reports whether the named field is an identifier field.
func (s *Schema) IsIdentifier(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.identifiers {
		if id == name {
			return true
		}
	}
	return false
}

// SetMatchWeights overrides the SameEntry weight table.
func (s *Schema) SetMatchWeights(weights []FieldWeight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights = append([]FieldWeight(nil), weights...)
}

// MatchWeights returns the SameEntry weight table in declaration order.
func (s *Schema) MatchWeights() []FieldWeight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FieldWeight(nil), s.weights...)
}
