// Runtime values produced by expression evaluation. Values are transient:
// the language has no user-defined bindings, so a Value lives only long
// enough to be consumed by the enclosing expression or built-in.

package lang

import "fmt"

// Value is the closed set of runtime values.
type Value interface {
	isValue()
}

// String is an identifier lexeme or string literal at runtime.
type String string

// Number is a non-negative integer at runtime.
type Number uint64

// List holds the evaluated elements of a list or tuple.
type List []Value

// Unit is the result of side-effecting expressions.
type Unit struct{}

func (String) isValue() {}
func (Number) isValue() {}
func (List) isValue()   {}
func (Unit) isValue()   {}

func valueTypeName(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Number:
		return "int"
	case List:
		return "list"
	case Unit:
		return "unit"
	default:
		return fmt.Sprintf("%T", v)
	}
}
