package schema

import (
	"errors"
	"fmt"
	"strconv"
)

// Options tunes an import.
type Options struct {
	// Merge keeps values already present in the target instead of
	// overwriting them with a default when the source omits the key.
	Merge bool

	// IgnoreUnrecognizedKeys skips the unrecognized-property check.
	IgnoreUnrecognizedKeys bool
}

// Import validates source against schema and stores the imported values in
// target, which it returns. Both must be maps. context is the path of
// source within the enclosing document ("" at the root).
//
// Unrecognized keys are rejected unless opts.IgnoreUnrecognizedKeys is set.
// A missing optional key receives a copy of its default, except under
// opts.Merge when target already holds that key.
func Import(source any, target *Map, schema Schema, context string, opts Options) (*Map, error) {
	src, ok := source.(*Map)
	if !ok || src == nil {
		return nil, &StructuralError{Message: fmt.Sprintf("expected an object, found %s", KindOf(source))}
	}
	if target == nil {
		return nil, &StructuralError{Message: "no target object to import into"}
	}

	if !opts.IgnoreUnrecognizedKeys {
		for _, key := range src.Keys() {
			if _, declared := schema.Lookup(key); !declared {
				return nil, &ValidationError{Message: "unrecognized property", Context: joinContext(context, key)}
			}
		}
	}

	for _, prop := range schema {
		value, present := src.Get(prop.Name)
		if !present {
			if prop.Field.Required {
				return nil, &ValidationError{Message: "a required property is missing", Context: joinContext(context, prop.Name)}
			}
			if !opts.Merge || !target.Has(prop.Name) {
				target.Set(prop.Name, Clone(prop.Field.Default))
			}
			continue
		}

		prior, _ := target.Get(prop.Name)
		imported, err := ImportField(value, prior, prop.Field, joinContext(context, prop.Name), opts)
		if err != nil {
			return nil, err
		}
		if prop.Field.Rename != "" {
			target.Set(prop.Field.Rename, imported)
		} else {
			target.Set(prop.Name, imported)
		}
	}

	return target, nil
}

// ImportField validates and imports a single value. prior is the value the
// target held before, used to seed nested objects so repeated imports merge
// in place.
//
// The checks run in a fixed order and stop at the first failure: null,
// kind, shape, Validate, Map.
func ImportField(value, prior any, field Field, context string, opts Options) (any, error) {
	if value == nil {
		if !field.Nullable {
			return nil, &ValidationError{Message: "null is not a valid value for this property", Context: context}
		}
		return nil, nil
	}

	if field.Type != KindAny {
		if found := KindOf(value); found != field.Type {
			return nil, &ValidationError{
				Message: fmt.Sprintf("expected type %q, found %q", field.Type.String(), found.String()),
				Context: context,
			}
		}
	}

	var err error
	switch shape := field.Shape.(type) {
	case Object:
		if KindOf(value) != KindObject {
			return nil, &ValidationError{
				Message: fmt.Sprintf("expected an object, found %q", KindOf(value).String()),
				Context: context,
			}
		}
		seed, ok := prior.(*Map)
		if !ok || seed == nil {
			seed = NewMap()
		}
		if value, err = Import(value, seed, shape.Schema, context, opts); err != nil {
			return nil, err
		}
	case Collection:
		if value, err = importMembers(value, shape.Members, context, opts); err != nil {
			return nil, err
		}
	}

	if field.Validate != nil {
		if err := field.Validate(value, context); err != nil {
			return nil, &ValidationError{Message: validationMessage(err), Context: context}
		}
	}

	if field.Map != nil {
		if value, err = field.Map(value, context); err != nil {
			return nil, &ValidationError{Message: validationMessage(err), Context: context}
		}
	}

	return value, nil
}

// importMembers imports every element of a map or array against members.
// Elements never see a prior value. The result is a new container.
func importMembers(value any, members Field, context string, opts Options) (any, error) {
	switch v := value.(type) {
	case *Map:
		out := NewMap()
		for _, key := range v.Keys() {
			elem, _ := v.Get(key)
			imported, err := ImportField(elem, nil, members, joinContext(context, key), opts)
			if err != nil {
				return nil, err
			}
			out.Set(key, imported)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			imported, err := ImportField(elem, nil, members, joinContext(context, strconv.Itoa(i)), opts)
			if err != nil {
				return nil, err
			}
			out[i] = imported
		}
		return out, nil
	default:
		return nil, &ValidationError{
			Message: fmt.Sprintf("expected an object or array, found %q", KindOf(value).String()),
			Context: context,
		}
	}
}

// validationMessage strips the location from an error that already is a
// ValidationError, so the caller can re-anchor it.
func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
