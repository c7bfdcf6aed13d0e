package journal

import internal "segjournal/internal/journal"

// Journal is a segment-structured write-ahead journal. Use it either as a
// write path (OpenForWrite, Submit) or a read path (FindReplaySegments,
// Replay, ScanExtents) against one pool of segments — never both
// concurrently against the same Journal value.
type Journal struct {
	j *internal.Journal
}

// Open constructs a Journal over sm and provider. It performs no I/O; call
// OpenForWrite to roll the first active segment, or FindReplaySegments/
// Replay to recover from an existing pool.
func Open(sm SegmentManager, provider SegmentProvider, opts ...Option) (*Journal, error) {
	return &Journal{j: internal.New(sm, provider, opts...)}, nil
}

// OpenForWrite rolls a fresh active segment and returns the JSeq that will
// belong to the first record submitted to it.
func (jr *Journal) OpenForWrite() (JSeq, error) {
	return jr.j.OpenForWrite()
}

// Submit appends r to the active segment, rolling to a new segment first
// if needed. Not safe for concurrent use.
func (jr *Journal) Submit(r Record) (PAddr, error) {
	return jr.j.Submit(r)
}

// FindReplaySegments scans the pool and returns the ordered JSeqs a replay
// should walk from.
func (jr *Journal) FindReplaySegments() ([]JSeq, error) {
	return jr.j.FindReplaySegments()
}

// Replay walks every segment in the pool in sequence order, applying the
// skip-newer-segment rule and forwarding surviving deltas to onDelta.
func (jr *Journal) Replay(onDelta ReplayDeltaHandler) error {
	return jr.j.Replay(onDelta)
}

// ScanSegment walks forward from start for at most budget bytes, invoking
// onDelta/onExtent for each record it can parse.
func (jr *Journal) ScanSegment(start PAddr, budget uint32, onDelta DeltaHandler, onExtent ExtentHandler) (PAddr, error) {
	return jr.j.ScanSegment(start, budget, onDelta, onExtent)
}

// ScanExtents enumerates extent payload locations without replaying
// deltas.
func (jr *Journal) ScanExtents(start PAddr, budget uint32) (PAddr, []ScanExtentLoc, error) {
	return jr.j.ScanExtents(start, budget)
}

// Close closes the active segment handle, if any.
func (jr *Journal) Close() error {
	return jr.j.Close()
}
