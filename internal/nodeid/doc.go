// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for node and
port identifiers within a graph document.

A node is addressed by a single identifier segment, e.g. `add_1`. A port is
addressed by its owning node plus a port identifier that is unique within that
node, serialized as `node.port`, e.g. `add_1.result`.

This package enforces the identifier schema and centralizes all formatting and
parsing logic so that every other layer compares ports by value.
*/
package nodeid
