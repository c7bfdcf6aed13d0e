package journal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSegmentWalksExtentsAndDeltas(t *testing.T) {
	sm := newFakeSegmentManager(512, 8192, 2)
	provider := newFakeProvider(2)
	j := New(sm, provider)

	start, err := j.OpenForWrite()
	require.NoError(t, err)

	r1 := Record{Extents: []ExtentWrite{
		{Info: ExtentInfo{LogicalAddr: 1, Len: 512, Kind: 1}, Payload: bytes.Repeat([]byte{0xAA}, 512)},
	}}
	addr1, err := j.Submit(r1)
	require.NoError(t, err)

	r2 := Record{Deltas: []DeltaInfo{
		{TargetAddr: addr1, Kind: 2, Payload: []byte("delta-payload")},
	}}
	_, err = j.Submit(r2)
	require.NoError(t, err)

	var gotExtents []ExtentInfo
	var gotDeltas []DeltaInfo
	next, err := j.ScanSegment(start.PAddr, uint32(sm.SegmentSize()),
		func(recordStart, base PAddr, d DeltaInfo) error {
			gotDeltas = append(gotDeltas, d)
			return nil
		},
		func(addr PAddr, info ExtentInfo) error {
			gotExtents = append(gotExtents, info)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, PAddrNull, next, "scan should run off the unwritten tail of the segment")

	require.Len(t, gotExtents, 1)
	assert.Equal(t, r1.Extents[0].Info, gotExtents[0])

	require.Len(t, gotDeltas, 1)
	assert.Equal(t, r2.Deltas[0], gotDeltas[0])
}

func TestScanSegmentRecordsTornTailMetric(t *testing.T) {
	sm := newFakeSegmentManager(512, 4096, 2)
	provider := newFakeProvider(2)
	metrics := NewMetrics(nil)
	j := New(sm, provider, WithMetrics(metrics))

	start, err := j.OpenForWrite()
	require.NoError(t, err)
	_, err = j.Submit(Record{})
	require.NoError(t, err)

	_, err = j.ScanSegment(start.PAddr, uint32(sm.SegmentSize()), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.tornTails))
}

func TestScanSegmentTornTailFromCorruptedRecordHeader(t *testing.T) {
	sm := newFakeSegmentManager(512, 8192, 2)
	provider := newFakeProvider(2)
	metrics := NewMetrics(nil)
	j := New(sm, provider, WithMetrics(metrics))

	start, err := j.OpenForWrite()
	require.NoError(t, err)

	r1 := Record{Extents: []ExtentWrite{
		{Info: ExtentInfo{LogicalAddr: 1, Len: 512, Kind: 1}, Payload: bytes.Repeat([]byte{0xAA}, 512)},
	}}
	addr1, err := j.Submit(r1)
	require.NoError(t, err)

	second, err := j.Submit(Record{Deltas: []DeltaInfo{
		{TargetAddr: addr1, Kind: 2, Payload: []byte("torn")},
	}})
	require.NoError(t, err)

	// Simulate a crash mid-write: the second record's header claimed a
	// nonzero mdlength, but the write never made it to disk intact.
	sm.corruptByte(second.Segment, second.Offset+1, 0)

	var gotExtents []ExtentInfo
	var gotDeltas []DeltaInfo
	next, err := j.ScanSegment(start.PAddr, uint32(sm.SegmentSize()),
		func(_, _ PAddr, d DeltaInfo) error {
			gotDeltas = append(gotDeltas, d)
			return nil
		},
		func(_ PAddr, info ExtentInfo) error {
			gotExtents = append(gotExtents, info)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, PAddrNull, next)

	require.Len(t, gotExtents, 1, "the first record, fully written before the tear, should still be visible")
	assert.Equal(t, r1.Extents[0].Info, gotExtents[0])
	assert.Empty(t, gotDeltas, "the torn second record contributes nothing")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.tornTails))
}

func TestScanSegmentReturnsIOErrorWhenExtentDescriptorsOverflowMetadata(t *testing.T) {
	sm := newFakeSegmentManager(512, 4096, 1)
	provider := newFakeProvider(1)
	j := New(sm, provider)

	_, err := j.OpenForWrite()
	require.NoError(t, err)
	handle := j.active

	header := RecordHeader{MDLength: 512, DLength: 0, Extents: 1000, Deltas: 0}
	buf := make([]byte, 512)
	putRecordHeader(buf, header)
	require.NoError(t, handle.Write(512, buf))

	_, err = j.ScanSegment(PAddr{Segment: handle.SegmentID(), Offset: 512}, 512, nil,
		func(addr PAddr, info ExtentInfo) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestScanSegmentStopsAtBudgetBoundary(t *testing.T) {
	sm := newFakeSegmentManager(512, 8192, 2)
	provider := newFakeProvider(2)
	j := New(sm, provider)

	start, err := j.OpenForWrite()
	require.NoError(t, err)
	_, err = j.Submit(Record{Extents: []ExtentWrite{
		{Info: ExtentInfo{LogicalAddr: 1, Len: 512, Kind: 1}, Payload: make([]byte, 512)},
	}})
	require.NoError(t, err)
	second, err := j.Submit(Record{Extents: []ExtentWrite{
		{Info: ExtentInfo{LogicalAddr: 2, Len: 512, Kind: 1}, Payload: make([]byte, 512)},
	}})
	require.NoError(t, err)

	var visited int
	next, err := j.ScanSegment(start.PAddr, second.Offset-start.PAddr.Offset, func(_, _ PAddr, _ DeltaInfo) error { return nil }, func(PAddr, ExtentInfo) error {
		visited++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, second, next)
	assert.Equal(t, 1, visited, "budget should stop the scan before the second record")
}
