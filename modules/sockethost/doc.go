// Package sockethost streams a reconciled view to a remote socket.io server.
// Every renderer call becomes one event carrying a JSON-friendly payload, so
// a browser canvas on the other side can mirror the view.
package sockethost
