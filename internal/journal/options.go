package journal

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Option configures a Journal at construction time.
type Option func(*Journal)

// WithLogger injects a logger. Defaults to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(j *Journal) {
		j.log = l
	}
}

// WithMetrics injects a metrics handle. Defaults to a nil *Metrics (no-op).
func WithMetrics(m *Metrics) Option {
	return func(j *Journal) {
		j.metrics = m
	}
}

// WithID sets the correlation id attached to every log entry the journal
// emits. Defaults to a freshly generated random UUID.
func WithID(id uuid.UUID) Option {
	return func(j *Journal) {
		j.id = id
	}
}
