// Package app contains the core application logic. It wires the document
// loader, the converter registry, the compatibility resolver and the metrics
// registry into one App, and exposes the headless operations the command
// line drives: checking a document, previewing it as Mermaid, pushing its
// view to a remote renderer and serving health and metrics endpoints.
//
// An App opens its document once. Types declared by the document live in the
// App's catalog, so a second Open on the same App is rejected by the catalog.
package app
