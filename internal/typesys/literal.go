package typesys

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// FromLiteral converts a literal value, typically parsed from a document, into
// a value of type t. Numeric literals are narrowed into Int or Float when t is
// one of the fixed-width primitives; everything else goes through cty/convert.
func FromLiteral(t cty.Type, v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return DefaultLiteral(t), nil
	}
	if !v.IsKnown() {
		return cty.NilVal, fmt.Errorf("literal value for %s is not known", Name(t))
	}

	switch {
	case t.Equals(Int), t.Equals(Float):
		num, err := convert.Convert(v, cty.Number)
		if err != nil {
			return cty.NilVal, fmt.Errorf("cannot use %s literal as %s: %w", v.Type().FriendlyName(), Name(t), err)
		}
		bf := num.AsBigFloat()
		if t.Equals(Float) {
			f, _ := bf.Float64()
			return FloatVal(f), nil
		}
		if !bf.IsInt() {
			return cty.NilVal, fmt.Errorf("cannot use fractional literal %s as int", bf.Text('g', -1))
		}
		i, acc := bf.Int64()
		if acc != big.Exact {
			return cty.NilVal, fmt.Errorf("literal %s overflows int", bf.Text('g', -1))
		}
		return IntVal(i), nil
	case t.IsCapsuleType():
		return cty.NilVal, fmt.Errorf("type %s has no literal form", Name(t))
	}

	out, err := convert.Convert(v, t)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot use %s literal as %s: %w", v.Type().FriendlyName(), Name(t), err)
	}
	return out, nil
}

// Format renders a value for display in a view or preview.
func Format(v cty.Value) string {
	switch {
	case v == cty.NilVal:
		return ""
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "(unknown)"
	}

	t := v.Type()
	switch {
	case t.Equals(Int):
		return fmt.Sprintf("%d", *v.EncapsulatedValue().(*int64))
	case t.Equals(Float):
		return fmt.Sprintf("%g", *v.EncapsulatedValue().(*float64))
	case t.Equals(cty.String):
		return fmt.Sprintf("%q", v.AsString())
	case t.Equals(cty.Number):
		return v.AsBigFloat().Text('g', -1)
	case t.Equals(cty.Bool):
		if v.True() {
			return "true"
		}
		return "false"
	case t.IsCollectionType() || t.IsTupleType():
		return fmt.Sprintf("%s(%d)", t.FriendlyName(), v.LengthInt())
	default:
		return t.FriendlyName()
	}
}
