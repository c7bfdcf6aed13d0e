package journal

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	internal "segjournal/internal/journal"
)

// Option configures a Journal at construction time.
type Option = internal.Option

// WithLogger injects a logger. Defaults to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option { return internal.WithLogger(l) }

// WithMetrics injects a metrics handle. Defaults to a nil *Metrics (no-op).
func WithMetrics(m *Metrics) Option { return internal.WithMetrics(m) }

// WithID sets the correlation id attached to every log entry the journal
// emits. Defaults to a freshly generated random UUID.
func WithID(id uuid.UUID) Option { return internal.WithID(id) }

// NewMetrics constructs a journal Metrics handle and registers its
// collectors against reg. Pass nil to use unregistered (but still live)
// collectors, e.g. in tests that read them back directly.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return internal.NewMetrics(reg)
}
