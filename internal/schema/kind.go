package schema

import "fmt"

// Kind is the runtime type of a document value as the schema sees it.
// Arrays are distinguished from objects.
type Kind int

const (
	// KindAny disables the type check on a Field.
	KindAny Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindObject
	KindArray
	// KindNull is only ever reported by KindOf, never declared on a Field.
	KindNull
	kindUnknown
)

var kindNames = map[Kind]string{
	KindAny:     "any",
	KindString:  "string",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindObject:  "object",
	KindArray:   "array",
	KindNull:    "null",
	kindUnknown: "unknown",
}

// String returns the lower-case name used in validation messages.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf reports the Kind of a decoded document value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case *Map:
		return KindObject
	case []any:
		return KindArray
	default:
		return kindUnknown
	}
}
