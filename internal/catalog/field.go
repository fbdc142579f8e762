package catalog

// Type identifies a collection type.
type Type string

const (
	TypeBook  Type = "book"
	TypeVideo Type = "video"
	TypeGame  Type = "game"
)

var allTypes = []Type{TypeBook, TypeVideo, TypeGame}

// ParseType validates a collection type name.
func ParseType(value string) (Type, bool) {
	for _, t := range allTypes {
		if string(t) == value {
			return t, true
		}
	}
	return "", false
}

// Types returns the known collection types.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// FieldKind describes how a field's value is formatted and edited.
type FieldKind int

const (
	KindLine FieldKind = iota
	KindTitle
	KindName
	KindDate
	KindNumber
	KindBool
	KindURL
	KindImage
	KindPara
	KindChoice
	KindRating
)

// FieldFlag carries per-field behavior toggles.
type FieldFlag uint8

const (
	FlagAllowMultiple FieldFlag = 1 << iota
	FlagAllowGrouped
	FlagAllowCompletion
)

// Field describes one schema entry.
type Field struct {
	Name     string
	Title    string
	Category string
	Kind     FieldKind
	Flags    FieldFlag
	// Allowed is the closed value list for KindChoice fields. It may grow at
	// runtime via Schema.ExtendAllowed.
	Allowed []string
}

// AllowsMultiple reports whether the field accepts delimiter-joined values.
func (f Field) AllowsMultiple() bool {
	return f.Flags&FlagAllowMultiple != 0
}
