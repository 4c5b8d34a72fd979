package scheduler

import "time"

// Scheduler is the scheduling primitive a cooperative loop yields to.
//
// # Contract
//
//   - **Now:** Returns the host clock used for time-budget checks.
//   - **Defer:** Queues fn to run on a later turn of the same logical thread.
//     fn never runs inside the Defer call itself.
type Scheduler interface {
	Now() time.Time
	Defer(fn func())
}

// Poster is implemented by schedulers that accept tasks from other goroutines.
// Background workers use it to hand results back to the logical thread.
type Poster interface {
	Post(fn func()) bool
}
