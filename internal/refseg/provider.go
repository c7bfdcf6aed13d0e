package refseg

import (
	"sync"

	"github.com/pkg/errors"

	"segjournal/internal/journal"
)

// MemoryProvider is an in-memory journal.SegmentProvider: a free list of
// segment ids plus the bookkeeping (current sequence per segment, closed
// set, tail target/committed) that a real object store's transaction
// manager/allocator would otherwise own. Unlike Journal itself, which is
// deliberately unsynchronized, MemoryProvider is shared state a caller's
// goroutines may legitimately contend on (e.g. a background segment
// reclaimer racing the journal's own roll), so its methods take mu.
type MemoryProvider struct {
	mu sync.Mutex

	free   []journal.SegmentID
	seqOf  map[journal.SegmentID]journal.SegmentSeq
	closed map[journal.SegmentID]bool

	tailTarget    journal.JSeq
	tailCommitted journal.JSeq
}

// NewMemoryProvider constructs a provider whose free list is the segment
// ids [0, numSegments).
func NewMemoryProvider(numSegments uint64) *MemoryProvider {
	p := &MemoryProvider{
		seqOf:         make(map[journal.SegmentID]journal.SegmentSeq),
		closed:        make(map[journal.SegmentID]bool),
		tailTarget:    journal.JSeqNull,
		tailCommitted: journal.JSeqNull,
	}
	for id := journal.SegmentID(0); uint64(id) < numSegments; id++ {
		p.free = append(p.free, id)
		p.seqOf[id] = journal.SegmentSeqNull
	}
	return p
}

// GetSegment pops a free segment id off the free list. Once the free list
// is exhausted, it falls back to recycling the lowest-segment_seq closed
// segment whose sequence is older than the current tail target, a minimal
// recycling policy standing in for a real allocator/garbage collector.
func (p *MemoryProvider) GetSegment() (journal.SegmentID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) > 0 {
		id := p.free[0]
		p.free = p.free[1:]
		delete(p.closed, id)
		return id, nil
	}

	var (
		found  bool
		id     journal.SegmentID
		lowSeq journal.SegmentSeq
	)
	for candidate := range p.closed {
		seq := p.seqOf[candidate]
		if seq >= p.tailTarget.SegmentSeq {
			continue
		}
		if !found || seq < lowSeq {
			found, id, lowSeq = true, candidate, seq
		}
	}
	if !found {
		return journal.NullSegmentID, errors.New("refseg: no free or recyclable segments available")
	}
	delete(p.closed, id)
	return id, nil
}

// CloseSegment marks segmentID closed; it does not return it to the free
// list. A caller's reclaimer is responsible for eventually calling
// ReleaseSegment once the segment's contents are no longer needed for
// replay.
func (p *MemoryProvider) CloseSegment(segmentID journal.SegmentID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed[segmentID] = true
}

// SetJournalSegment records that segmentID is now sequenced as
// segmentSeq in the journal's total order.
func (p *MemoryProvider) SetJournalSegment(segmentID journal.SegmentID, segmentSeq journal.SegmentSeq) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seqOf[segmentID] = segmentSeq
}

// InitMarkSegmentClosed seeds seqOf/closed for a segment discovered during
// FindReplaySegments, without touching the free list.
func (p *MemoryProvider) InitMarkSegmentClosed(segmentID journal.SegmentID, segmentSeq journal.SegmentSeq) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seqOf[segmentID] = segmentSeq
	p.closed[segmentID] = true
}

// GetSeq returns the current sequence number of segmentID, or
// journal.SegmentSeqNull if the provider has never assigned one (or the
// segment was released). The sentinel is the maximum possible value, so
// replay skips deltas targeting a segment the provider has no record of,
// the same as deltas superseded by a newer write.
func (p *MemoryProvider) GetSeq(segmentID journal.SegmentID) journal.SegmentSeq {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq, ok := p.seqOf[segmentID]; ok {
		return seq
	}
	return journal.SegmentSeqNull
}

// GetJournalTailTarget returns the JSeq the next rolled segment's header
// should record as its journal_tail.
func (p *MemoryProvider) GetJournalTailTarget() journal.JSeq {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tailTarget
}

// UpdateJournalTailCommitted records the JSeq that has actually been
// persisted as a segment header's journal_tail.
func (p *MemoryProvider) UpdateJournalTailCommitted(tail journal.JSeq) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tailCommitted = tail
}

// SetTailTarget lets a caller (e.g. a transaction manager driving garbage
// collection, or a test) advance the tail target that future rolled
// segments will advertise.
func (p *MemoryProvider) SetTailTarget(tail journal.JSeq) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tailTarget = tail
}

// TailCommitted returns the most recently committed tail, as observed by
// UpdateJournalTailCommitted.
func (p *MemoryProvider) TailCommitted() journal.JSeq {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tailCommitted
}

// ReleaseSegment returns a closed segment to the free list, as a caller's
// reclaimer would once it decides the segment's contents are no longer
// needed.
func (p *MemoryProvider) ReleaseSegment(segmentID journal.SegmentID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.closed, segmentID)
	delete(p.seqOf, segmentID)
	p.free = append(p.free, segmentID)
}
