package journal

import (
	"bytes"
	"encoding/binary"
)

// Encode produces a single contiguous buffer of exactly
// size.MDLength+size.DLength bytes: header, extent descriptors, delta
// descriptors, zero padding to MDLength, then extent payloads concatenated
// in extent order.
func Encode(r Record, size RecordSize) []byte {
	buf := make([]byte, size.MDLength+size.DLength)

	header := RecordHeader{
		MDLength: size.MDLength,
		DLength:  size.DLength,
		Checksum: 0, // reserved, never written non-zero
		Extents:  uint32(len(r.Extents)),
		Deltas:   uint32(len(r.Deltas)),
	}
	off := putRecordHeader(buf, header)
	for _, e := range r.Extents {
		off += putExtentInfo(buf[off:], e.Info)
	}
	for _, d := range r.Deltas {
		off += putDeltaInfo(buf[off:], d)
	}
	// buf[off:size.MDLength] is already zero (make zero-initializes).

	dataOff := size.MDLength
	for _, e := range r.Extents {
		copy(buf[dataOff:], e.Payload)
		dataOff += uint32(len(e.Payload))
	}
	return buf
}

func putRecordHeader(buf []byte, h RecordHeader) uint32 {
	binary.LittleEndian.PutUint32(buf[0:4], h.MDLength)
	binary.LittleEndian.PutUint32(buf[4:8], h.DLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Checksum)
	binary.LittleEndian.PutUint32(buf[16:20], h.Extents)
	binary.LittleEndian.PutUint32(buf[20:24], h.Deltas)
	return recordHeaderEncodedSize
}

// decodeRecordHeader attempts to decode a RecordHeader from the first bytes
// of buf. The second return value is false when buf is too short or the
// header is otherwise nonsensical — this is the DecodeEOF signal (torn
// write tolerance) and is deliberately not an error.
func decodeRecordHeader(buf []byte) (RecordHeader, bool) {
	if len(buf) < recordHeaderEncodedSize {
		return RecordHeader{}, false
	}
	h := RecordHeader{
		MDLength: binary.LittleEndian.Uint32(buf[0:4]),
		DLength:  binary.LittleEndian.Uint32(buf[4:8]),
		Checksum: binary.LittleEndian.Uint64(buf[8:16]),
		Extents:  binary.LittleEndian.Uint32(buf[16:20]),
		Deltas:   binary.LittleEndian.Uint32(buf[20:24]),
	}
	if h.MDLength < recordHeaderEncodedSize {
		return RecordHeader{}, false
	}
	return h, true
}

func putExtentInfo(buf []byte, e ExtentInfo) uint32 {
	binary.LittleEndian.PutUint64(buf[0:8], e.LogicalAddr)
	binary.LittleEndian.PutUint32(buf[8:12], e.Len)
	buf[12] = e.Kind
	return extentInfoEncodedSize
}

func decodeExtentInfo(buf []byte) (ExtentInfo, bool) {
	if len(buf) < extentInfoEncodedSize {
		return ExtentInfo{}, false
	}
	return ExtentInfo{
		LogicalAddr: binary.LittleEndian.Uint64(buf[0:8]),
		Len:         binary.LittleEndian.Uint32(buf[8:12]),
		Kind:        buf[12],
	}, true
}

func putDeltaInfo(buf []byte, d DeltaInfo) uint32 {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(d.TargetAddr.Segment))
	binary.LittleEndian.PutUint32(buf[8:12], d.TargetAddr.Offset)
	buf[12] = d.Kind
	binary.LittleEndian.PutUint32(buf[13:17], uint32(len(d.Payload)))
	copy(buf[17:], d.Payload)
	return uint32(deltaInfoFixedEncodedSize) + uint32(len(d.Payload))
}

func decodeDeltaInfo(buf []byte) (DeltaInfo, uint32, bool) {
	if len(buf) < deltaInfoFixedEncodedSize {
		return DeltaInfo{}, 0, false
	}
	seg := SegmentID(binary.LittleEndian.Uint64(buf[0:8]))
	off := binary.LittleEndian.Uint32(buf[8:12])
	kind := buf[12]
	plen := binary.LittleEndian.Uint32(buf[13:17])
	total := uint32(deltaInfoFixedEncodedSize) + plen
	if uint32(len(buf)) < total {
		return DeltaInfo{}, 0, false
	}
	payload := make([]byte, plen)
	copy(payload, buf[17:17+plen])
	return DeltaInfo{
		TargetAddr: PAddr{Segment: seg, Offset: off},
		Kind:       kind,
		Payload:    payload,
	}, total, true
}

func putSegmentHeader(buf []byte, h SegmentHeader) uint32 {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(h.SegmentSeq))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.PhysicalSegmentID))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.JournalTail.SegmentSeq))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.JournalTail.PAddr.Segment))
	binary.LittleEndian.PutUint32(buf[32:36], h.JournalTail.PAddr.Offset)
	return segmentHeaderEncodedSize
}

// encodeSegmentHeader encodes h, zero-padded to blockSize.
func encodeSegmentHeader(h SegmentHeader, blockSize uint32) []byte {
	buf := make([]byte, roundUp(segmentHeaderEncodedSize, blockSize))
	putSegmentHeader(buf, h)
	return buf
}

// decodeSegmentHeader attempts to decode a SegmentHeader from the first
// bytes of buf. ok is false if buf is too short to hold one or if the
// header bytes are all zero (a never-written segment) — callers treat this
// as "unformatted or torn segment, skip it".
func decodeSegmentHeader(buf []byte) (SegmentHeader, bool) {
	if len(buf) < segmentHeaderEncodedSize {
		return SegmentHeader{}, false
	}
	if bytes.Equal(buf[:segmentHeaderEncodedSize], make([]byte, segmentHeaderEncodedSize)) {
		return SegmentHeader{}, false
	}
	return SegmentHeader{
		SegmentSeq:        SegmentSeq(binary.LittleEndian.Uint64(buf[0:8])),
		PhysicalSegmentID: SegmentID(binary.LittleEndian.Uint64(buf[8:16])),
		JournalTail: JSeq{
			SegmentSeq: SegmentSeq(binary.LittleEndian.Uint64(buf[16:24])),
			PAddr: PAddr{
				Segment: SegmentID(binary.LittleEndian.Uint64(buf[24:32])),
				Offset:  binary.LittleEndian.Uint32(buf[32:36]),
			},
		},
	}, true
}
