package journal

// SegmentProvider is the adapter surface against an externally owned
// registry that decides which physical segment is active and tracks the
// journal tail. A real deployment's block allocator/transaction manager
// supplies its own implementation; internal/refseg ships a minimal
// in-memory reference.
type SegmentProvider interface {
	// GetSegment allocates the next physical segment to become active.
	GetSegment() (SegmentID, error)

	// CloseSegment informs the provider a previously active segment is now
	// read-only.
	CloseSegment(segmentID SegmentID)

	// SetJournalSegment records which physical segment currently hosts
	// sequence segmentSeq.
	SetJournalSegment(segmentID SegmentID, segmentSeq SegmentSeq)

	// InitMarkSegmentClosed re-populates provider state from an on-disk
	// header discovered during replay.
	InitMarkSegmentClosed(segmentID SegmentID, segmentSeq SegmentSeq)

	// GetSeq returns the current sequence hosted by segmentID, or
	// SegmentSeqNull if unknown. Used by the replay skip rule.
	GetSeq(segmentID SegmentID) SegmentSeq

	// GetJournalTailTarget returns the tail the journal should advertise in
	// the next segment header.
	GetJournalTailTarget() JSeq

	// UpdateJournalTailCommitted notifies the provider that tail is now
	// durable.
	UpdateJournalTailCommitted(tail JSeq)
}
