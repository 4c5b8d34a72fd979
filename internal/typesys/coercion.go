package typesys

import "github.com/zclconf/go-cty/cty"

// Coercion is a built-in, automatic conversion between two primitive types.
// Unlike registered converters it needs no adapter node.
type Coercion struct {
	From cty.Type
	To   cty.Type
}

var coercions = []Coercion{
	{From: Int, To: cty.String},
	{From: Float, To: cty.String},
}

// Coercions returns the built-in numeric-to-text coercion table.
func Coercions() []Coercion {
	out := make([]Coercion, len(coercions))
	copy(out, coercions)
	return out
}

// FindCoercion returns the built-in coercion from one type to another.
func FindCoercion(from, to cty.Type) (Coercion, bool) {
	for _, c := range coercions {
		if c.From.Equals(from) && c.To.Equals(to) {
			return c, true
		}
	}
	return Coercion{}, false
}
