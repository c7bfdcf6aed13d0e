package journal

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Journal is a segment-structured write-ahead journal. It is constructed
// against a SegmentManager and a SegmentProvider and is then used either as
// a write path (OpenForWrite, Submit) or a read path (FindReplaySegments,
// Replay, ScanExtents) — never both concurrently.
//
// Journal mirrors journal.cc's single Journal class: the writer, scanner
// and replay coordinator are methods on this one type, split across
// writer.go, scanner.go and replay.go by concern, exactly as the source
// splits journal.cc by function while keeping everything on Journal.
type Journal struct {
	sm       SegmentManager
	provider SegmentProvider

	blockSize       uint32
	maxRecordLength uint32

	active    SegmentHandle
	activeSeq SegmentSeq
	writtenTo uint32
	nextSeq   SegmentSeq

	log     *logrus.Logger
	metrics *Metrics
	id      uuid.UUID
}

// New constructs a Journal over sm and provider. It performs no I/O; call
// OpenForWrite to roll the first active segment, or FindReplaySegments/
// Replay to recover from an existing pool.
func New(sm SegmentManager, provider SegmentProvider, opts ...Option) *Journal {
	blockSize := sm.BlockSize()
	j := &Journal{
		sm:              sm,
		provider:        provider,
		blockSize:       blockSize,
		maxRecordLength: uint32(sm.SegmentSize()) - roundUp(segmentHeaderEncodedSize, blockSize),
		log:             logrus.StandardLogger(),
		id:              uuid.New(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) logger() *logrus.Entry {
	return j.log.WithField("journal_id", j.id)
}

// Close closes the active segment handle, if any. It does not close the
// SegmentManager or SegmentProvider, which the Journal never owned.
func (j *Journal) Close() error {
	if j.active == nil {
		return nil
	}
	err := j.active.Close()
	j.active = nil
	return err
}
