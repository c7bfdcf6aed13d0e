// Package refseg is the public façade over internal/refseg: reference,
// swappable implementations of journal.SegmentManager and
// journal.SegmentProvider, suitable for exercising segjournal/pkg/journal
// end to end without a caller supplying its own block layer or allocator.
package refseg

import (
	internal "segjournal/internal/refseg"
)

type (
	// FileSegmentManager is a file-backed journal.SegmentManager.
	FileSegmentManager = internal.FileSegmentManager

	// MemoryProvider is an in-memory journal.SegmentProvider.
	MemoryProvider = internal.MemoryProvider

	// Option configures a FileSegmentManager at construction time.
	Option = internal.Option
)

// WithBlockSize overrides the block size a FileSegmentManager aligns to.
func WithBlockSize(n uint32) Option { return internal.WithBlockSize(n) }

// WithDirectIO opens segment files with O_DIRECT instead of the standard
// library's buffered file I/O. Requires a filesystem that supports
// O_DIRECT.
func WithDirectIO() Option { return internal.WithDirectIO() }

// NewFileSegmentManager creates (or reopens) a pool of numSegments files
// of segmentSize bytes each under dir.
func NewFileSegmentManager(dir string, segmentSize uint64, numSegments uint64, opts ...Option) (*FileSegmentManager, error) {
	return internal.NewFileSegmentManager(dir, segmentSize, numSegments, opts...)
}

// NewMemoryProvider constructs a provider whose free list is the segment
// ids [0, numSegments).
func NewMemoryProvider(numSegments uint64) *MemoryProvider {
	return internal.NewMemoryProvider(numSegments)
}
