// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model contains the in-memory representation of a graph document:
// nodes, their ordered ports, and the connection references ports hold.
//
// A connection is not stored as a separate record. It exists when a port holds
// a non-empty reference to the opposite port. Which side holds the reference
// depends on the edge kind:
//
//   - Value edges store the reference on the Input port (the consumer).
//   - Flow edges store the reference on the Output port (the branch).
//
// Edge values returned by this package are derived views of those references.
package model
