// Package catalog defines the canonical record model: collection types,
// field schemas, and records. Schemas own the set of allowed fields for a
// collection type; records hold validated field values keyed by field name.
//
// Schemas are mutable shared state: adapters may extend the allowed value
// list of enumerated fields at runtime when a source reports a value the
// schema does not yet know. Mutations are serialized through the schema's
// lock so concurrent adapters never race on the allowed lists.
//
// The sqlite-backed Store persists records and supplies the existing entries
// that merge comparisons run against.
package catalog
