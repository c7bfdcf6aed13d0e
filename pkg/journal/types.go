// Package journal is the public façade over internal/journal: a
// segment-structured write-ahead journal for a copy-on-write object
// store. Callers supply their own SegmentManager (block layer) and
// SegmentProvider (allocator/transaction manager) — see
// segjournal/pkg/refseg for reference implementations of both.
package journal

import (
	internal "segjournal/internal/journal"
)

type (
	SegmentManager     = internal.SegmentManager
	SegmentHandle      = internal.SegmentHandle
	SegmentProvider    = internal.SegmentProvider
	SegmentID          = internal.SegmentID
	SegmentSeq         = internal.SegmentSeq
	PAddr              = internal.PAddr
	JSeq               = internal.JSeq
	Record             = internal.Record
	RecordHeader       = internal.RecordHeader
	RecordSize         = internal.RecordSize
	ExtentInfo         = internal.ExtentInfo
	ExtentWrite        = internal.ExtentWrite
	DeltaInfo          = internal.DeltaInfo
	DeltaHandler       = internal.DeltaHandler
	ReplayDeltaHandler = internal.ReplayDeltaHandler
	ExtentHandler      = internal.ExtentHandler
	ScanExtentLoc      = internal.ScanExtentLoc
	SegmentHeader      = internal.SegmentHeader
	Metrics            = internal.Metrics
)

const (
	NullSegmentID  = internal.NullSegmentID
	SegmentSeqNull = internal.SegmentSeqNull
)

var (
	PAddrNull = internal.PAddrNull
	JSeqNull  = internal.JSeqNull
)

// EncodedLength re-exports internal/journal's record sizing helper for
// callers that want to size a Record before calling Submit.
func EncodedLength(r Record, blockSize uint32) RecordSize {
	return internal.EncodedLength(r, blockSize)
}
