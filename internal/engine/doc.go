// Package engine is the editing layer of the application. An Editor owns one
// open document together with its edge manager, dirty set and view
// synchronizer, and is the only thing callers mutate the graph through.
//
// # Why the Editor Exists
//
// Every graph mutation has the same epilogue: the affected nodes are marked
// dirty and a partial reload is requested so the view catches up. Keeping
// that epilogue in one place means no caller can forget it.
//
//   - **Mutations**: Connect, ConnectVia, Disconnect, DeleteNode and the proxy
//     operations delegate to the edge manager and then request a partial
//     reload when anything became dirty.
//   - **Document swaps**: SwapDocument rebinds the edge manager and forces a
//     full reload, which prunes every visual of the previous document.
//   - **Integrity**: references found dangling by a reload are healed and the
//     healed nodes are reloaded again.
//
// The Editor is not safe for concurrent use; like the synchronizer it runs on
// the host's logical thread.
package engine
