package fetch

// KeyKind identifies the kind of search key a request carries. The set is
// stable across adapters; each adapter declares its supported subset through
// CanSearch.
type KeyKind int

const (
	KeyTitle KeyKind = iota
	KeyKeyword
	KeyPerson
	KeyIdentifier
	KeyRaw
)

var keyNames = map[KeyKind]string{
	KeyTitle:      "title",
	KeyKeyword:    "keyword",
	KeyPerson:     "person",
	KeyIdentifier: "identifier",
	KeyRaw:        "raw",
}

func (k KeyKind) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKeyKind resolves a key kind from its string form.
func ParseKeyKind(value string) (KeyKind, bool) {
	for kind, name := range keyNames {
		if name == value {
			return kind, true
		}
	}
	return 0, false
}

// KeyKinds returns all key kinds in declaration order.
func KeyKinds() []KeyKind {
	return []KeyKind{KeyTitle, KeyKeyword, KeyPerson, KeyIdentifier, KeyRaw}
}
