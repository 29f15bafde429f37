package engine

// FileTask is a discovered file waiting for its checksum. Each task is
// dequeued by exactly one worker.
type FileTask struct {
	Path string // absolute
	Size int64  // size at discovery time, used for filtering and progress
}
