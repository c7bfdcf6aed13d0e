package journal

import (
	"errors"
	"fmt"
)

// fakeHandle and fakeSegmentManager are an in-memory SegmentManager used
// across this package's tests. They live in their own (non-_test-suffixed
// helper section of a) _test.go file rather than pulling in internal/refseg,
// which would make the journal package's tests depend on a package that
// itself depends on journal.

type fakeHandle struct {
	id       SegmentID
	buf      []byte
	writePtr uint32
	closed   bool
}

func (h *fakeHandle) SegmentID() SegmentID { return h.id }

func (h *fakeHandle) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(h.buf)) {
		return fmt.Errorf("fake: write past end of segment %d", h.id)
	}
	copy(h.buf[offset:], data)
	if end := offset + uint32(len(data)); end > h.writePtr {
		h.writePtr = end
	}
	return nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

func (h *fakeHandle) WritePtr() uint32      { return h.writePtr }
func (h *fakeHandle) WriteCapacity() uint32 { return uint32(len(h.buf)) }

type fakeSegmentManager struct {
	blockSize   uint32
	segmentSize uint64
	numSegments uint64
	segments    map[SegmentID]*fakeHandle
	failOpen    map[SegmentID]bool
}

func newFakeSegmentManager(blockSize uint32, segmentSize uint64, numSegments uint64) *fakeSegmentManager {
	return &fakeSegmentManager{
		blockSize:   blockSize,
		segmentSize: segmentSize,
		numSegments: numSegments,
		segments:    make(map[SegmentID]*fakeHandle),
		failOpen:    make(map[SegmentID]bool),
	}
}

func (m *fakeSegmentManager) BlockSize() uint32   { return m.blockSize }
func (m *fakeSegmentManager) SegmentSize() uint64 { return m.segmentSize }
func (m *fakeSegmentManager) NumSegments() uint64 { return m.numSegments }

func (m *fakeSegmentManager) Read(addr PAddr, length uint32) ([]byte, error) {
	h, ok := m.segments[addr.Segment]
	if !ok {
		return nil, ErrSegmentNotFound
	}
	if uint64(addr.Offset)+uint64(length) > uint64(len(h.buf)) {
		return nil, errors.New("fake: read past end")
	}
	out := make([]byte, length)
	copy(out, h.buf[addr.Offset:addr.Offset+length])
	return out, nil
}

func (m *fakeSegmentManager) Open(id SegmentID) (SegmentHandle, error) {
	if m.failOpen[id] {
		return nil, errors.New("fake: open failed")
	}
	h, ok := m.segments[id]
	if !ok {
		h = &fakeHandle{id: id, buf: make([]byte, m.segmentSize)}
		m.segments[id] = h
	}
	h.writePtr = 0
	h.closed = false
	return h, nil
}

// zeroSegment clears a previously-written segment's backing buffer, as if
// it had never been formatted. Used to simulate an empty pool.
func (m *fakeSegmentManager) zeroSegment(id SegmentID) {
	if h, ok := m.segments[id]; ok {
		for i := range h.buf {
			h.buf[i] = 0
		}
	}
}

// corruptByte overwrites a single byte of a segment's backing buffer, used
// to simulate a torn write or bit rot.
func (m *fakeSegmentManager) corruptByte(id SegmentID, offset uint32, value byte) {
	m.segments[id].buf[offset] = value
}

type fakeProvider struct {
	free          []SegmentID
	seqOf         map[SegmentID]SegmentSeq
	closed        map[SegmentID]bool
	tailTarget    JSeq
	tailCommitted JSeq
}

func newFakeProvider(numSegments uint64) *fakeProvider {
	p := &fakeProvider{
		seqOf:         make(map[SegmentID]SegmentSeq),
		closed:        make(map[SegmentID]bool),
		tailTarget:    JSeqNull,
		tailCommitted: JSeqNull,
	}
	for id := SegmentID(0); uint64(id) < numSegments; id++ {
		p.free = append(p.free, id)
		p.seqOf[id] = SegmentSeqNull
	}
	return p
}

func (p *fakeProvider) GetSegment() (SegmentID, error) {
	if len(p.free) == 0 {
		return NullSegmentID, errors.New("fake: no free segments")
	}
	id := p.free[0]
	p.free = p.free[1:]
	return id, nil
}

func (p *fakeProvider) CloseSegment(segmentID SegmentID) {
	p.closed[segmentID] = true
}

func (p *fakeProvider) SetJournalSegment(segmentID SegmentID, segmentSeq SegmentSeq) {
	p.seqOf[segmentID] = segmentSeq
}

func (p *fakeProvider) InitMarkSegmentClosed(segmentID SegmentID, segmentSeq SegmentSeq) {
	p.seqOf[segmentID] = segmentSeq
	p.closed[segmentID] = true
}

func (p *fakeProvider) GetSeq(segmentID SegmentID) SegmentSeq {
	if seq, ok := p.seqOf[segmentID]; ok {
		return seq
	}
	return SegmentSeqNull
}

func (p *fakeProvider) GetJournalTailTarget() JSeq { return p.tailTarget }

func (p *fakeProvider) UpdateJournalTailCommitted(tail JSeq) { p.tailCommitted = tail }

func (p *fakeProvider) release(segmentID SegmentID) {
	delete(p.closed, segmentID)
	p.free = append(p.free, segmentID)
}
