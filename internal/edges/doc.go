// Package edges validates and performs connect and disconnect operations on a
// graph document.
//
// The Manager is the only component that mutates connection references. Every
// undoable mutation is announced to the undo bridge first, every touched node
// is added to the dirty set afterwards, and proxy flags of affected edges are
// recomputed through the configured ProxyPolicy.
//
// Validation failures are never returned as errors from Connect. They come
// back as a Result with Status Rejected and a Reason, so the caller can decide
// how to present them (for example by offering converter candidates). Result.Err
// turns a rejection into an error that matches the package's sentinel errors.
package edges
