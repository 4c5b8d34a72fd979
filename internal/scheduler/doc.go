// Package scheduler provides the host scheduling primitives that drive the
// cooperative view reload loop.
//
// # Why Scheduler Exists
//
// All graph mutation and view reconciliation run on one logical thread. Long
// reloads must not freeze that thread, so the synchronizer works in small
// units and, once its time budget is spent, hands control back to the host
// and asks to be resumed on the next turn. The host decides what a "turn" is:
// a UI frame, a message-loop iteration, or an explicit step in a test.
//
// This provides several key benefits:
//   - **Responsiveness:** Other callbacks interleave between reload slices
//   - **Determinism:** Tests drive every slice explicitly with Manual
//   - **Decoupled Logic:** The synchronizer never owns a goroutine or a timer
//
// # Implementations
//
//   - **Loop:** A single-goroutine task loop. Tasks may be posted from any
//     goroutine but always run on the loop goroutine, one at a time.
//   - **Manual:** A queue that only advances when the caller steps it. Its
//     clock can be advanced automatically to simulate slow work.
package scheduler
