package types

import (
	"fmt"
	"reflect"
)

// Type defines the contract for a port value type.
type Type interface {
	// Name returns the canonical name of the type (e.g., "float", "[int]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Derived is implemented by types that extend a parent type.
type Derived interface {
	Parent() Type
}

// --- Built-in Type Implementations ---

// AnyType accepts every value.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(value any) error { return nil }

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function and may extend a parent.
type CustomType struct {
	name     string
	parent   Type
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

// Parent returns the extended type, or nil for a root type.
func (t *CustomType) Parent() Type { return t.parent }

func (t *CustomType) Validate(value any) error {
	if t.parent != nil {
		if err := t.parent.Validate(value); err != nil {
			return err
		}
	}
	if t.validate == nil {
		return nil
	}
	return t.validate(value)
}

// --- Factory Functions ---

// Any creates a type accepting every value.
func Any() Type { return &AnyType{} }

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a root custom type. A nil validate accepts every value.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// Extend creates a custom type deriving from parent.
func Extend(name string, parent Type, validate func(any) error) Type {
	return &CustomType{name: name, parent: parent, validate: validate}
}

// Elem returns the element type of a slice type, or t itself otherwise.
func Elem(t Type) Type {
	if s, ok := t.(*SliceType); ok {
		return s.elemType
	}
	return t
}

// Identical reports whether a and b name the same type.
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Name() == b.Name()
}

// AssignableFrom reports whether a value of type src may be used where dst is
// expected: identical types, dst is any, src extends dst, or an implicit
// numeric conversion exists (int to float).
func AssignableFrom(dst, src Type) bool {
	if dst == nil || src == nil {
		return false
	}
	if _, ok := dst.(*AnyType); ok {
		return true
	}
	if Identical(dst, src) {
		return true
	}
	if implicit(dst, src) {
		return true
	}
	for p := parentOf(src); p != nil; p = parentOf(p) {
		if Identical(dst, p) {
			return true
		}
	}
	return false
}

func implicit(dst, src Type) bool {
	_, toFloat := dst.(*FloatType)
	_, fromInt := src.(*IntType)
	return toFloat && fromInt
}

func parentOf(t Type) Type {
	if d, ok := t.(Derived); ok {
		return d.Parent()
	}
	return nil
}

// ParseType converts a built-in type name to a Type.
// Supports "any", "string", "int", "float", "bool" and slices like "[int]".
func ParseType(typeStr string) (Type, error) {
	if elem, ok := sliceElem(typeStr); ok {
		elemType, err := ParseType(elem)
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "any":
		return Any(), nil
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

func sliceElem(typeStr string) (string, bool) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		return typeStr[1 : len(typeStr)-1], true
	}
	return "", false
}
