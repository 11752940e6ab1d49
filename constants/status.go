package constants

// ScreeningStatus is the canonical status for a screening run tracked by
// the batch queue.
type ScreeningStatus string

// Stable values (reported over the API, do not rename).
const (
	ScreeningQueued  ScreeningStatus = "QUEUED"  // accepted, waiting for a worker
	ScreeningRunning ScreeningStatus = "RUNNING" // pipeline in progress
	ScreeningDone    ScreeningStatus = "DONE"    // feedback persisted
	ScreeningFailed  ScreeningStatus = "FAILED"  // terminal failure, see error kind
)
