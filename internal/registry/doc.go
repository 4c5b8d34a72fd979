// Package registry provides the pluggable converter registry.
//
// A converter descriptor bridges two otherwise incompatible Value types by
// materializing an adapter node that is inserted between the two ports. The
// Registry stores descriptors in registration order; lookups scan that order
// and the first matching descriptor wins.
//
// Descriptors are contributed by Modules during application startup. The
// registry is then validated so that malformed descriptors are reported before
// any connection is attempted.
package registry
