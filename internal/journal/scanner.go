package journal

import "fmt"

// DeltaHandler is invoked once per delta decoded while scanning a segment.
// recordStart is the PAddr of the record's first metadata byte; base is the
// PAddr of the record's first extent payload byte (the "base" address
// callers use for address arithmetic against the delta's target). This is
// the low-level scan callback type; Replay wraps it to hand its own callers
// a full JSeq instead of a bare PAddr (see ReplayDeltaHandler).
type DeltaHandler func(recordStart, base PAddr, delta DeltaInfo) error

// ReplayDeltaHandler is invoked once per surviving delta during Replay.
// seq carries the enclosing segment's sequence number alongside the
// record's PAddr, giving callers the full total-order position.
type ReplayDeltaHandler func(seq JSeq, base PAddr, delta DeltaInfo) error

// ExtentHandler is invoked once per extent descriptor decoded while
// scanning a segment, with addr set to the PAddr of that extent's payload
// within the record's data region.
type ExtentHandler func(addr PAddr, info ExtentInfo) error

// ScanSegment walks forward from start for at most budget bytes, invoking
// onDelta/onExtent (either of which may be nil) for each record it can
// parse. It returns the PAddr of the first unparsed byte, or PAddrNull if
// the segment ended. Direct port of Journal::scan_segment plus
// Journal::read_record_metadata, Journal::try_decode_deltas and
// Journal::try_decode_extent_infos.
func (j *Journal) ScanSegment(start PAddr, budget uint32, onDelta DeltaHandler, onExtent ExtentHandler) (PAddr, error) {
	j.logger().WithFields(map[string]any{
		"start":  start,
		"budget": budget,
	}).Debug("journal: scan_segment")
	return scanSegment(j.sm, j.metrics, start, budget, onDelta, onExtent)
}

func scanSegment(
	sm SegmentManager,
	metrics *Metrics,
	start PAddr,
	budget uint32,
	onDelta DeltaHandler,
	onExtent ExtentHandler,
) (PAddr, error) {
	blockSize := sm.BlockSize()
	segmentSize := sm.SegmentSize()
	current := start

	for {
		// Step 1: bounds check.
		if uint64(current.Offset)+uint64(blockSize) > segmentSize {
			return PAddrNull, nil
		}

		// Step 2: read first metadata block, attempt header decode.
		first, err := sm.Read(current, blockSize)
		if err != nil {
			return PAddrNull, fmt.Errorf("%w: reading record header at %s: %v", ErrIO, current, err)
		}
		header, ok := decodeRecordHeader(first)
		if !ok {
			// Torn-write tolerance: an unfinished record at the tail of a
			// crashed segment is indistinguishable from garbage.
			metrics.recordTornTail()
			return PAddrNull, nil
		}

		metaBuf := first
		if header.MDLength > blockSize {
			if uint64(current.Offset)+uint64(header.MDLength) > segmentSize {
				return PAddrNull, fmt.Errorf("%w: record at %s claims mdlength %d past segment end", ErrIO, current, header.MDLength)
			}
			rest, err := sm.Read(current.Add(blockSize), header.MDLength-blockSize)
			if err != nil {
				return PAddrNull, fmt.Errorf("%w: reading record metadata tail at %s: %v", ErrIO, current.Add(blockSize), err)
			}
			metaBuf = append(append([]byte{}, first...), rest...)
		}

		recordStart := current
		next := current.Add(header.MDLength + header.DLength)
		base := recordStart.Add(header.MDLength)

		if onDelta != nil {
			deltas, ok := decodeDeltas(header, metaBuf)
			if !ok {
				return PAddrNull, fmt.Errorf("%w: unable to decode deltas for record at %s", ErrIO, recordStart)
			}
			for _, d := range deltas {
				if err := onDelta(recordStart, base, d); err != nil {
					return PAddrNull, err
				}
			}
		}

		if onExtent != nil {
			extents, ok := decodeExtentInfos(header, metaBuf)
			if !ok {
				return PAddrNull, fmt.Errorf("%w: unable to decode extent infos for record at %s", ErrIO, recordStart)
			}
			var dataOff uint32
			for _, info := range extents {
				addr := base.Add(dataOff)
				if err := onExtent(addr, info); err != nil {
					return PAddrNull, err
				}
				dataOff += info.Len
			}
		}

		current = next
		if current.Offset >= start.Offset+budget {
			return current, nil
		}
	}
}

// decodeDeltas decodes exactly header.Deltas delta descriptors starting
// immediately after the record header and the extent descriptors in the
// metadata region metaBuf.
func decodeDeltas(header RecordHeader, metaBuf []byte) ([]DeltaInfo, bool) {
	off := recordHeaderEncodedSize + int(header.Extents)*extentInfoEncodedSize
	if off > len(metaBuf) {
		return nil, false
	}
	deltas := make([]DeltaInfo, 0, header.Deltas)
	for i := uint32(0); i < header.Deltas; i++ {
		d, n, ok := decodeDeltaInfo(metaBuf[off:])
		if !ok {
			return nil, false
		}
		deltas = append(deltas, d)
		off += int(n)
	}
	return deltas, true
}

// decodeExtentInfos decodes exactly header.Extents extent descriptors
// starting immediately after the record header in the metadata region
// metaBuf.
func decodeExtentInfos(header RecordHeader, metaBuf []byte) ([]ExtentInfo, bool) {
	off := recordHeaderEncodedSize
	infos := make([]ExtentInfo, 0, header.Extents)
	for i := uint32(0); i < header.Extents; i++ {
		info, ok := decodeExtentInfo(metaBuf[off:])
		if !ok {
			return nil, false
		}
		infos = append(infos, info)
		off += extentInfoEncodedSize
	}
	return infos, true
}
