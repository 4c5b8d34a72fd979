package typesys

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Fixed-width numeric primitives. They are distinct from cty.Number, which is
// arbitrary precision and has no built-in text coercion.
var (
	Int   = cty.Capsule("int", reflect.TypeOf(int64(0)))
	Float = cty.Capsule("float", reflect.TypeOf(float64(0)))
)

// Any accepts and produces values of every type.
var Any = cty.DynamicPseudoType

// Key returns a string that identifies t. cty object types are not comparable,
// so maps keyed by type use this instead of the type itself.
func Key(t cty.Type) string {
	if t == cty.NilType {
		return ""
	}
	return t.GoString()
}

// Name returns the user-facing name of a type.
func Name(t cty.Type) string {
	switch {
	case t == cty.NilType:
		return "untyped"
	case t.Equals(cty.DynamicPseudoType):
		return "any"
	default:
		return t.FriendlyName()
	}
}

// IntVal wraps a native integer into an Int value.
func IntVal(v int64) cty.Value {
	return cty.CapsuleVal(Int, &v)
}

// FloatVal wraps a native float into a Float value.
func FloatVal(v float64) cty.Value {
	return cty.CapsuleVal(Float, &v)
}

// DefaultLiteral returns the value a Value Input port of type t holds when it
// has no connection.
func DefaultLiteral(t cty.Type) cty.Value {
	switch {
	case t == cty.NilType, t.Equals(cty.DynamicPseudoType):
		return cty.NullVal(cty.DynamicPseudoType)
	case t.Equals(cty.String):
		return cty.StringVal("")
	case t.Equals(cty.Number):
		return cty.Zero
	case t.Equals(cty.Bool):
		return cty.False
	case t.Equals(Int):
		return IntVal(0)
	case t.Equals(Float):
		return FloatVal(0)
	case t.IsListType():
		return cty.ListValEmpty(t.ElementType())
	case t.IsSetType():
		return cty.SetValEmpty(t.ElementType())
	case t.IsMapType():
		return cty.MapValEmpty(t.ElementType())
	default:
		return cty.NullVal(t)
	}
}
