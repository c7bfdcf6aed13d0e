package journal

import (
	"errors"
	"fmt"
)

// Error taxonomy. DecodeEOF is deliberately absent from this
// list: it is never surfaced as an error value (see codec.go's decode*
// helpers and scanner.go), only as a boolean control-flow signal meaning
// "torn tail, stop cleanly".
var (
	// ErrIO wraps any underlying segment manager read/write failure, or a
	// framing inconsistency detected after a record header has already
	// committed to a length.
	ErrIO = errors.New("journal: io error")

	// ErrCapacityExceeded means a record's encoded length exceeds a whole
	// segment's write capacity. This is a fatal caller bug, never retried.
	ErrCapacityExceeded = errors.New("journal: record exceeds segment capacity")

	// ErrSegmentNotFound is returned by a SegmentManager.Open when the
	// requested segment id is unknown to it.
	ErrSegmentNotFound = errors.New("journal: segment not found")

	// ErrEmptyPool is returned by FindReplaySegments when no segment in
	// the pool decodes a valid header. It wraps ErrIO.
	ErrEmptyPool = fmt.Errorf("%w: no valid segment headers found", ErrIO)
)

// assertf panics with a formatted message. It is the Go analogue of the
// source's ceph_assert(...) sites: used exclusively for conditions that
// indicate on-disk corruption rather than a condition any caller is
// expected to handle or retry.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("journal: corruption: "+format, args...))
	}
}
