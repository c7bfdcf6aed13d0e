package journal

import internal "segjournal/internal/journal"

var (
	ErrIO               = internal.ErrIO
	ErrCapacityExceeded = internal.ErrCapacityExceeded
	ErrSegmentNotFound  = internal.ErrSegmentNotFound
	ErrEmptyPool        = internal.ErrEmptyPool
)
