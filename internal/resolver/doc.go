// Package resolver decides whether a value produced by an output port can flow
// into an input port.
//
// Resolution applies these rules in order and stops at the first that holds:
//
//  1. The input filter accepts the output type directly (identity, "any", or a
//     declared supertype). The result is Compatible.
//  2. A built-in numeric-to-text coercion turns the output type into a type the
//     filter accepts. The result is Coerced; no adapter node is needed.
//  3. Registered converter descriptors are scanned in order. If they reach a
//     single accepted type the result is Convertible and names the first
//     matching descriptor. If they reach several distinct accepted types the
//     result is Ambiguous and lists one candidate per reachable type.
//  4. Otherwise the result is Incompatible.
//
// The resolver never mutates anything. Decisions against allow-list filters are
// memoized in an LRU cache which is purged whenever the converter registry or
// the type catalog changes.
package resolver
