package journal

// SegmentManager is the typed wrapper the journal requires over whatever
// raw block device or file pool backs the segments. A real deployment
// supplies its own implementation; internal/refseg ships a file-backed
// reference implementation.
type SegmentManager interface {
	BlockSize() uint32
	SegmentSize() uint64
	NumSegments() uint64

	// Read returns length bytes starting at addr. It fails with an IoError
	// on any underlying error.
	Read(addr PAddr, length uint32) ([]byte, error)

	// Open opens segmentID for writing, failing with an IoError or
	// ErrSegmentNotFound.
	Open(segmentID SegmentID) (SegmentHandle, error)
}

// SegmentHandle is the per-segment write surface returned by
// SegmentManager.Open.
type SegmentHandle interface {
	SegmentID() SegmentID
	Write(offset uint32, data []byte) error
	Close() error
	WritePtr() uint32
	WriteCapacity() uint32
}
