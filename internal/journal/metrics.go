package journal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the writer, scanner and replay hot paths. A nil
// *Metrics is valid everywhere and every method on it is a no-op —
// disabling metrics must never change decoded record streams or returned
// addresses.
type Metrics struct {
	recordsWritten  prometheus.Counter
	bytesWritten    prometheus.Counter
	segmentRolls    prometheus.Counter
	deltasSkipped   prometheus.Counter
	tornTails       prometheus.Counter
	replayDuration  prometheus.Histogram
}

// NewMetrics registers the journal's counters and histograms against reg
// and returns the handle used to update them. Passing a fresh
// prometheus.NewRegistry() per journal instance is safe; registering the
// same *Metrics' collectors against the same registry twice is not.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journal_records_written_total",
			Help: "Records successfully appended to the active segment.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journal_bytes_written_total",
			Help: "Encoded record bytes (metadata + data) written to segments.",
		}),
		segmentRolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journal_segment_rolls_total",
			Help: "Number of times the writer rolled to a new active segment.",
		}),
		deltasSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journal_replay_deltas_skipped_total",
			Help: "Deltas dropped during replay because their target segment was already rewritten.",
		}),
		tornTails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journal_scan_torn_tail_total",
			Help: "Times the scanner stopped a walk early on an undecodable trailing record.",
		}),
		replayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journal_replay_duration_seconds",
			Help:    "Wall-clock time spent in Journal.Replay.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.recordsWritten,
			m.bytesWritten,
			m.segmentRolls,
			m.deltasSkipped,
			m.tornTails,
			m.replayDuration,
		)
	}
	return m
}

func (m *Metrics) recordWrite(size RecordSize) {
	if m == nil {
		return
	}
	m.recordsWritten.Inc()
	m.bytesWritten.Add(float64(size.MDLength + size.DLength))
}

func (m *Metrics) recordRoll() {
	if m == nil {
		return
	}
	m.segmentRolls.Inc()
}

func (m *Metrics) recordDeltaSkipped() {
	if m == nil {
		return
	}
	m.deltasSkipped.Inc()
}

func (m *Metrics) recordTornTail() {
	if m == nil {
		return
	}
	m.tornTails.Inc()
}

func (m *Metrics) observeReplayDuration(seconds float64) {
	if m == nil {
		return
	}
	m.replayDuration.Observe(seconds)
}
