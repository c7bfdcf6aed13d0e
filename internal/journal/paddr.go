package journal

import "fmt"

// SegmentID identifies a physical segment within the pool managed by a
// SegmentManager.
type SegmentID uint64

// NullSegmentID is the sentinel "no segment" id.
const NullSegmentID SegmentID = ^SegmentID(0)

// SegmentSeq is the monotonically increasing sequence number stamped on a
// segment when it becomes the active segment. Ordering by SegmentSeq is the
// total order used to sequence segments across wrap-around of SegmentID
// reuse.
type SegmentSeq uint64

// SegmentSeqNull is the sentinel "unknown/none" sequence. It is defined as
// the maximum representable value so that it compares greater than any real
// sequence number — the replay skip rule depends on this: a delta
// targeting a segment whose current sequence is unknown (for example, one
// already released) compares as newer than the replay point and is
// dropped.
const SegmentSeqNull SegmentSeq = ^SegmentSeq(0)

// PAddr is a physical address: a segment and a byte offset within it.
type PAddr struct {
	Segment SegmentID
	Offset  uint32
}

// PAddrNull is the sentinel "no address" value.
var PAddrNull = PAddr{Segment: NullSegmentID, Offset: 0}

// IsNull reports whether p is the sentinel null address.
func (p PAddr) IsNull() bool {
	return p.Segment == NullSegmentID
}

// Add returns p advanced by delta bytes within the same segment.
func (p PAddr) Add(delta uint32) PAddr {
	return PAddr{Segment: p.Segment, Offset: p.Offset + delta}
}

func (p PAddr) String() string {
	if p.IsNull() {
		return "paddr(null)"
	}
	return fmt.Sprintf("paddr(%d, %d)", p.Segment, p.Offset)
}

// JSeq is a journal sequence: a total-order position composed of a segment
// sequence number and a physical address within (or just past) that segment.
type JSeq struct {
	SegmentSeq SegmentSeq
	PAddr      PAddr
}

// JSeqNull is the sentinel "no sequence" value.
var JSeqNull = JSeq{SegmentSeq: SegmentSeqNull, PAddr: PAddrNull}

// IsNull reports whether j is the sentinel null sequence.
func (j JSeq) IsNull() bool {
	return j.PAddr.IsNull()
}

func (j JSeq) String() string {
	return fmt.Sprintf("jseq(%d, %s)", j.SegmentSeq, j.PAddr)
}

// Less reports whether j orders strictly before other by segment sequence.
func (j JSeq) Less(other JSeq) bool {
	return j.SegmentSeq < other.SegmentSeq
}
