package schema

// Field describes one property of a schema.
type Field struct {
	// Required fails the import when the key is absent.
	Required bool

	// Nullable permits an explicit null. A permitted null skips every
	// later check, including Validate and Map.
	Nullable bool

	// Type is the expected Kind. KindAny skips the check.
	Type Kind

	// Shape describes nested structure: nil, Object or Collection.
	Shape Shape

	// Default is used when the key is absent. It is deep-copied on every
	// use, so a shared default is never aliased between imports.
	Default any

	// Validate runs after structural validation on the imported value.
	// A returned error is reported as a ValidationError at this field's
	// context.
	Validate func(value any, context string) error

	// Map transforms the final value. Its result is what gets stored.
	Map func(value any, context string) (any, error)

	// Rename stores the value under another key in the target.
	Rename string
}

// Property binds a name to its Field.
type Property struct {
	Name  string
	Field Field
}

// Schema is an ordered list of properties. Declaration order decides which
// missing property is reported first.
type Schema []Property

// Lookup returns the Field declared for name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, p := range s {
		if p.Name == name {
			return p.Field, true
		}
	}
	return Field{}, false
}

// Shape is the tagged variant describing a Field's nested structure.
type Shape interface {
	isShape()
}

// Object imports the value as a nested document against Schema.
type Object struct {
	Schema Schema
}

// Collection imports every element of an array, or every value of a map,
// against the same Members field.
type Collection struct {
	Members Field
}

func (Object) isShape()     {}
func (Collection) isShape() {}
