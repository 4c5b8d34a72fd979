// Package document defines the boundary to the authoritative graph document
// and provides a thread-safe in-memory implementation of it.
//
// Connection references live on ports (see package model). Memory keeps an
// adjacency index next to them: owner -> target and target -> owners. Both are
// updated by SetConnection and ClearConnection, so looking up every edge that
// touches a node costs O(fan-out). Edits made through Edit bypass the index;
// Refresh rebuilds it from the port fields and must run before a reload.
package document
