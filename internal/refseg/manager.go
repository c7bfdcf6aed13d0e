// Package refseg provides reference, swappable implementations of the
// journal's two external collaborators (SegmentManager, SegmentProvider)
// so the journal can be exercised end-to-end without a caller supplying
// its own block layer.
package refseg

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/ncw/directio"
	"github.com/pkg/errors"

	"segjournal/internal/journal"
)

// FileSegmentManager is a file-backed journal.SegmentManager: one
// fixed-size file per segment in a pool directory.
type FileSegmentManager struct {
	dir         string
	blockSize   uint32
	segmentSize uint64
	numSegments uint64
	useDirectIO bool

	mu    sync.Mutex
	files map[journal.SegmentID]*os.File
}

// Option configures a FileSegmentManager at construction time.
type Option func(*FileSegmentManager)

// WithBlockSize overrides the block size used for alignment. Defaults to
// directio.BlockSize.
func WithBlockSize(n uint32) Option {
	return func(m *FileSegmentManager) { m.blockSize = n }
}

// WithDirectIO opens segment files with O_DIRECT via github.com/ncw/directio
// instead of the Go standard library's buffered os.OpenFile. It requires a
// filesystem that supports O_DIRECT (not all container/tmpfs setups do),
// so it is opt-in rather than the default.
func WithDirectIO() Option {
	return func(m *FileSegmentManager) { m.useDirectIO = true }
}

// NewFileSegmentManager creates (or reopens) a pool of numSegments files of
// segmentSize bytes each under dir, creating dir if necessary.
func NewFileSegmentManager(dir string, segmentSize uint64, numSegments uint64, opts ...Option) (*FileSegmentManager, error) {
	m := &FileSegmentManager{
		dir:         dir,
		blockSize:   directio.BlockSize,
		segmentSize: segmentSize,
		numSegments: numSegments,
		files:       make(map[journal.SegmentID]*os.File),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "refseg: creating pool directory %s", dir)
	}
	return m, nil
}

func (m *FileSegmentManager) BlockSize() uint32    { return m.blockSize }
func (m *FileSegmentManager) SegmentSize() uint64  { return m.segmentSize }
func (m *FileSegmentManager) NumSegments() uint64  { return m.numSegments }

func (m *FileSegmentManager) path(id journal.SegmentID) string {
	return filepath.Join(m.dir, "segment-"+paddedID(id))
}

func paddedID(id journal.SegmentID) string {
	const digits = "0123456789"
	buf := [20]byte{}
	i := len(buf)
	v := uint64(id)
	for {
		i--
		buf[i] = digits[v%10]
		v /= 10
		if v == 0 {
			break
		}
	}
	for len(buf)-i < 8 {
		i--
		buf[i] = '0'
	}
	return string(buf[i:])
}

// fileFor returns the open, size-initialized file for id, opening (and if
// necessary, creating) it on first use. Caller must hold m.mu.
func (m *FileSegmentManager) fileFor(id journal.SegmentID) (*os.File, error) {
	if f, ok := m.files[id]; ok {
		return f, nil
	}
	if uint64(id) >= m.numSegments {
		return nil, errors.Errorf("refseg: segment id %d out of range [0, %d)", id, m.numSegments)
	}

	path := m.path(id)
	flag := os.O_CREATE | os.O_RDWR
	var f *os.File
	var err error
	if m.useDirectIO {
		f, err = directio.OpenFile(path, flag, 0644)
	} else {
		f, err = os.OpenFile(path, flag, 0644)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "refseg: opening segment file %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "refseg: stat segment file %s", path)
	}
	if uint64(info.Size()) < m.segmentSize {
		if err := f.Truncate(int64(m.segmentSize)); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "refseg: truncating segment file %s", path)
		}
	}

	m.files[id] = f
	return f, nil
}

// Read returns length bytes starting at addr.
func (m *FileSegmentManager) Read(addr journal.PAddr, length uint32) ([]byte, error) {
	m.mu.Lock()
	f, err := m.fileFor(addr.Segment)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	readLen := length
	if m.useDirectIO {
		readLen = roundUpU32(length, m.blockSize)
	}
	buf := m.allocBuffer(readLen)

	n, err := f.ReadAt(buf, int64(addr.Offset))
	if err != nil && n < int(length) {
		return nil, errors.Wrapf(err, "refseg: reading %d bytes at segment %d offset %d", length, addr.Segment, addr.Offset)
	}
	return buf[:length], nil
}

// Open opens segmentID for writing.
func (m *FileSegmentManager) Open(segmentID journal.SegmentID) (journal.SegmentHandle, error) {
	m.mu.Lock()
	f, err := m.fileFor(segmentID)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fileSegmentHandle{mgr: m, id: segmentID, file: f}, nil
}

// CloseAll closes every cached segment file handle, aggregating any
// failures. Not part of journal.SegmentManager; used by callers tearing
// the pool down entirely.
func (m *FileSegmentManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result *multierror.Error
	for id, f := range m.files {
		if err := f.Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "refseg: closing segment file %d", id))
		}
		delete(m.files, id)
	}
	return result.ErrorOrNil()
}

func (m *FileSegmentManager) allocBuffer(n uint32) []byte {
	if m.useDirectIO {
		return directio.AlignedBlock(int(n))
	}
	return make([]byte, n)
}

func roundUpU32(n, multiple uint32) uint32 {
	if multiple == 0 || n%multiple == 0 {
		return n
	}
	return n + (multiple - n%multiple)
}

// fileSegmentHandle is the per-segment write surface backed by an open
// segment file.
type fileSegmentHandle struct {
	mgr      *FileSegmentManager
	id       journal.SegmentID
	file     *os.File
	writePtr uint32
}

func (h *fileSegmentHandle) SegmentID() journal.SegmentID { return h.id }

func (h *fileSegmentHandle) Write(offset uint32, data []byte) error {
	buf := data
	if h.mgr.useDirectIO {
		buf = h.mgr.allocBuffer(uint32(len(data)))
		copy(buf, data)
	}
	if _, err := h.file.WriteAt(buf, int64(offset)); err != nil {
		return errors.Wrapf(err, "refseg: writing %d bytes to segment %d at offset %d", len(data), h.id, offset)
	}
	if end := offset + uint32(len(data)); end > h.writePtr {
		h.writePtr = end
	}
	return nil
}

func (h *fileSegmentHandle) Close() error {
	if err := h.file.Sync(); err != nil {
		return errors.Wrapf(err, "refseg: syncing segment %d", h.id)
	}
	return nil
}

func (h *fileSegmentHandle) WritePtr() uint32 { return h.writePtr }

func (h *fileSegmentHandle) WriteCapacity() uint32 { return uint32(h.mgr.segmentSize) }
