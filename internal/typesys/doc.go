// Package typesys defines the value types carried by Value ports.
//
// Types are plain cty.Type values. The cty primitives (string, number, bool)
// and collection types are used directly, cty.DynamicPseudoType stands for
// "any", and two fixed-width numeric primitives (int and float) plus every
// user-declared named type are cty capsule types. A Catalog records the named
// types of one document together with their declared supertypes, which is the
// "implements" relationship consulted by input filters.
package typesys
