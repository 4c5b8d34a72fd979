// Package viewsync keeps a visual layer consistent with a graph document.
//
// A Synchronizer reconciles the renderer against the document in small units
// of work: one node or one edge at a time. Each reload pass carries a
// generation id and a cursor. When the time budget of a slice is spent the
// pass yields to the host scheduler and resumes on its next turn. A newer
// request makes the in-flight pass stale; the stale pass notices on its next
// resumption and stops without touching the renderer again.
//
// Within one pass nodes are always materialized before edges are resolved.
// The synchronizer only reads the document; it writes to the renderer.
package viewsync
