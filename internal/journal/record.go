package journal

// RecordHeader is encoded at the start of every record's metadata region.
//
// mdlength is the total metadata byte length including this header, the
// extent descriptors, and the delta descriptors, rounded up to the block
// size. dlength is the total payload byte length; it is already
// block-aligned by construction (the caller supplies block-aligned extent
// payloads). Checksum is reserved: always encoded as zero, never verified
// (see DESIGN.md, Open Question resolutions).
type RecordHeader struct {
	MDLength uint32
	DLength  uint32
	Checksum uint64
	Extents  uint32
	Deltas   uint32
}

const recordHeaderEncodedSize = 4 + 4 + 8 + 4 + 4 // 24 bytes, bounded

// ExtentInfo identifies a new physical payload carried by a record: its
// logical address, length, and a caller-defined kind tag used to index it
// later. The payload bytes themselves live in the record's data region, not
// in the descriptor.
type ExtentInfo struct {
	LogicalAddr uint64
	Len         uint32
	Kind        uint8
}

const extentInfoEncodedSize = 8 + 4 + 1 // 13 bytes, bounded

// DeltaInfo is a logical mutation against an existing extent. TargetAddr may
// be PAddrNull for deltas that do not bind to any extent. Payload is opaque
// to the journal; it is decoded by the caller according to Kind.
type DeltaInfo struct {
	TargetAddr PAddr
	Kind       uint8
	Payload    []byte
}

const deltaInfoFixedEncodedSize = 8 + 4 + 1 + 4 // segment + offset + kind + payload length, variable

// ExtentWrite pairs an ExtentInfo descriptor with the payload bytes a
// Submit call should place in the record's data region, in descriptor order.
type ExtentWrite struct {
	Info    ExtentInfo
	Payload []byte
}

// Record is the in-memory representation of one journal entry submitted by
// a caller.
type Record struct {
	Extents []ExtentWrite
	Deltas  []DeltaInfo
}

// RecordSize is the split encoded length of a Record: metadata bytes
// (block-aligned) and data bytes (assumed already block-aligned by the
// caller).
type RecordSize struct {
	MDLength uint32
	DLength  uint32
}

// EncodedLength computes the block-aligned metadata length and the data
// length of r without encoding it.
func EncodedLength(r Record, blockSize uint32) RecordSize {
	md := uint32(recordHeaderEncodedSize)
	md += uint32(len(r.Extents)) * extentInfoEncodedSize
	for _, d := range r.Deltas {
		md += uint32(deltaInfoFixedEncodedSize) + uint32(len(d.Payload))
	}

	var dl uint32
	for _, e := range r.Extents {
		dl += uint32(len(e.Payload))
	}

	md = roundUp(md, blockSize)
	return RecordSize{MDLength: md, DLength: dl}
}

func roundUp(n, multiple uint32) uint32 {
	if multiple == 0 {
		return n
	}
	rem := n % multiple
	if rem == 0 {
		return n
	}
	return n + (multiple - rem)
}

// SegmentHeader is written at offset 0 of every journal segment.
type SegmentHeader struct {
	SegmentSeq        SegmentSeq
	PhysicalSegmentID SegmentID
	JournalTail       JSeq
}

const segmentHeaderEncodedSize = 8 + 8 + (8 + 8 + 4) // segment_seq + physical id + journal_tail(JSeq)
