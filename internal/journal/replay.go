package journal

import (
	"sort"
	"time"
)

// FindReplaySegments scans every segment in the pool, recovers the total
// order of segments by segment_seq, re-populates the provider's view of
// closed segments, and returns the ordered list of JSeqs the replay should
// walk from. Direct port of Journal::find_replay_segments.
func (j *Journal) FindReplaySegments() ([]JSeq, error) {
	type decoded struct {
		id     SegmentID
		header SegmentHeader
	}

	var segments []decoded
	n := j.sm.NumSegments()
	for id := SegmentID(0); uint64(id) < n; id++ {
		buf, err := j.sm.Read(PAddr{Segment: id, Offset: 0}, j.blockSize)
		if err != nil {
			// The source discards read-level I/O failures here too.
			continue
		}
		header, ok := decodeSegmentHeader(buf)
		if !ok {
			j.logger().WithField("segment_id", id).Debug("journal: find_replay_segments: unable to decode header, skipping")
			continue
		}
		segments = append(segments, decoded{id: id, header: header})
	}

	j.logger().WithField("count", len(segments)).Debug("journal: find_replay_segments: have segments")
	if len(segments) == 0 {
		return nil, ErrEmptyPool
	}

	sort.Slice(segments, func(a, b int) bool {
		return segments[a].header.SegmentSeq < segments[b].header.SegmentSeq
	})

	j.nextSeq = segments[len(segments)-1].header.SegmentSeq + 1

	for _, s := range segments {
		j.provider.InitMarkSegmentClosed(s.id, s.header.SegmentSeq)
	}

	tail := segments[len(segments)-1].header.JournalTail
	j.provider.UpdateJournalTailCommitted(tail)
	j.logger().WithField("journal_tail", tail).Debug("journal: find_replay_segments")

	var fromIdx int
	replayFrom := tail.PAddr
	if !tail.PAddr.IsNull() {
		found := false
		for i, s := range segments {
			if s.id == tail.PAddr.Segment {
				fromIdx = i
				found = true
				break
			}
		}
		assertf(found, "journal_tail %s references segment %d which is not present in the pool", tail, tail.PAddr.Segment)
		assertf(segments[fromIdx].header.SegmentSeq == tail.SegmentSeq,
			"journal_tail %s does not match on-disk header %+v for segment %d",
			tail, segments[fromIdx].header, tail.PAddr.Segment)
	} else {
		fromIdx = 0
		replayFrom = PAddr{Segment: segments[0].id, Offset: j.blockSize}
	}

	result := make([]JSeq, 0, len(segments)-fromIdx)
	for i := fromIdx; i < len(segments); i++ {
		s := segments[i]
		offset := j.blockSize
		if i == fromIdx {
			offset = replayFrom.Offset
		}
		seq := JSeq{
			SegmentSeq: s.header.SegmentSeq,
			PAddr:      PAddr{Segment: s.id, Offset: offset},
		}
		j.logger().WithField("replay_from", seq).Debug("journal: find_replay_segments: replaying from")
		result = append(result, seq)
	}

	return result, nil
}

// Replay enumerates the pool via FindReplaySegments and drives the scanner
// across each segment in order, applying the skip-newer-segment rule and
// forwarding surviving deltas to onDelta. Direct port of Journal::replay /
// Journal::replay_segment.
func (j *Journal) Replay(onDelta ReplayDeltaHandler) error {
	start := time.Now()
	defer func() {
		j.metrics.observeReplayDuration(time.Since(start).Seconds())
	}()

	segments, err := j.FindReplaySegments()
	if err != nil {
		return err
	}
	j.logger().WithField("segments", len(segments)).Debug("journal: replay: found segments")

	for _, seq := range segments {
		if err := j.replaySegment(seq, onDelta); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) replaySegment(seq JSeq, onDelta ReplayDeltaHandler) error {
	j.logger().WithField("start", seq).Debug("journal: replay_segment: starting")

	wrapped := func(recordStart, base PAddr, delta DeltaInfo) error {
		if !delta.TargetAddr.IsNull() && j.provider.GetSeq(delta.TargetAddr.Segment) > seq.SegmentSeq {
			// The extent this delta mutates has since been rewritten into
			// a newer segment; its current state already reflects (or
			// supersedes) this delta.
			j.metrics.recordDeltaSkipped()
			return nil
		}
		return onDelta(JSeq{SegmentSeq: seq.SegmentSeq, PAddr: recordStart}, base, delta)
	}

	_, err := j.ScanSegment(seq.PAddr, uint32(j.sm.SegmentSize()), wrapped, nil)
	return err
}

// ScanExtentLoc pairs a decoded ExtentInfo with the PAddr of its payload.
type ScanExtentLoc struct {
	Addr PAddr
	Info ExtentInfo
}

// ScanExtents is a convenience read path for callers that want to
// enumerate extent payloads without replaying deltas. If start.Offset == 0
// it is rewritten to the block size (skip the segment header); otherwise it
// defers entirely to ScanSegment. Direct port of Journal::scan_extents.
func (j *Journal) ScanExtents(start PAddr, budget uint32) (PAddr, []ScanExtentLoc, error) {
	if start.Offset == 0 {
		start.Offset = j.blockSize
	}

	var locs []ScanExtentLoc
	next, err := j.ScanSegment(start, budget, nil, func(addr PAddr, info ExtentInfo) error {
		locs = append(locs, ScanExtentLoc{Addr: addr, Info: info})
		return nil
	})
	if err != nil {
		return PAddrNull, nil, err
	}
	return next, locs, nil
}
