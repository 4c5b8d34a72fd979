// Package dag holds the node-level control-flow graph derived from a
// document's Flow edges. It answers reachability questions for the cycle
// check performed before a Flow connection is committed, and can list the
// cycles already present in a document.
package dag
