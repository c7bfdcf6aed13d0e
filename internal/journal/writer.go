package journal

import "fmt"

// OpenForWrite rolls a fresh active segment and returns the JSeq that will
// belong to the first record submitted to it. Direct port of
// Journal::open_for_write.
func (j *Journal) OpenForWrite() (JSeq, error) {
	seq, err := j.roll()
	if err != nil {
		return JSeqNull, err
	}
	return JSeq{
		SegmentSeq: seq,
		PAddr:      PAddr{Segment: j.active.SegmentID(), Offset: j.blockSize},
	}, nil
}

// Submit encodes record, rolling to a new segment first if it would not fit
// in the remaining capacity of the active segment, then appends it at the
// current write cursor. Direct port of Journal::write_record plus the
// needs_roll check from Journal::write_record's caller path.
//
// Submit is not safe for concurrent use, and must not be called concurrently
// with Replay/FindReplaySegments/ScanExtents on the same Journal.
func (j *Journal) Submit(r Record) (PAddr, error) {
	size := EncodedLength(r, j.blockSize)
	total := size.MDLength + size.DLength

	if total > j.maxRecordLength {
		return PAddrNull, fmt.Errorf("%w: record length %d exceeds max %d", ErrCapacityExceeded, total, j.maxRecordLength)
	}

	if j.active == nil || j.writtenTo+total > j.active.WriteCapacity() {
		if _, err := j.roll(); err != nil {
			return PAddrNull, err
		}
	}

	buf := Encode(r, size)
	target := j.writtenTo
	j.writtenTo += total

	j.logger().WithFields(map[string]any{
		"segment_id": j.active.SegmentID(),
		"mdlength":   size.MDLength,
		"dlength":    size.DLength,
		"target":     target,
	}).Debug("journal: write_record")

	if err := j.active.Write(target, buf); err != nil {
		return PAddrNull, fmt.Errorf("%w: writing record at offset %d: %v", ErrIO, target, err)
	}

	j.metrics.recordWrite(size)

	return PAddr{Segment: j.active.SegmentID(), Offset: target}, nil
}

// roll closes the current active segment (if any), allocates and opens a
// new one from the provider, writes its header, and makes it active.
// Direct port of Journal::roll_journal_segment + Journal::initialize_segment.
func (j *Journal) roll() (SegmentSeq, error) {
	var oldID SegmentID = NullSegmentID
	if j.active != nil {
		oldID = j.active.SegmentID()
		if err := j.active.Close(); err != nil {
			return 0, fmt.Errorf("%w: closing old active segment %d: %v", ErrIO, oldID, err)
		}
	}

	newID, err := j.provider.GetSegment()
	if err != nil {
		return 0, fmt.Errorf("%w: allocating new segment: %v", ErrIO, err)
	}
	handle, err := j.sm.Open(newID)
	if err != nil {
		return 0, fmt.Errorf("%w: opening segment %d: %v", ErrIO, newID, err)
	}

	j.active = handle
	j.writtenTo = 0

	seq := j.nextSeq
	j.nextSeq++

	tail := j.provider.GetJournalTailTarget()
	header := SegmentHeader{
		SegmentSeq:        seq,
		PhysicalSegmentID: newID,
		JournalTail:       tail,
	}

	j.logger().WithFields(map[string]any{
		"segment_id":   newID,
		"segment_seq":  seq,
		"journal_tail": tail,
	}).Debug("journal: initialize_segment")

	buf := encodeSegmentHeader(header, j.blockSize)
	if err := handle.Write(0, buf); err != nil {
		return 0, fmt.Errorf("%w: writing header for segment %d: %v", ErrIO, newID, err)
	}
	j.writtenTo = j.blockSize
	j.activeSeq = seq

	j.provider.UpdateJournalTailCommitted(tail)

	if oldID != NullSegmentID {
		j.provider.CloseSegment(oldID)
	}
	j.provider.SetJournalSegment(newID, seq)

	j.metrics.recordRoll()
	j.logger().WithFields(map[string]any{
		"old_segment_id": oldID,
		"new_segment_id": newID,
		"segment_seq":    seq,
	}).Debug("journal: roll_journal_segment")

	return seq, nil
}
