package kitelog

import (
	"time"

	"go.uber.org/zap"
)

type duration struct {
	name     string
	duration time.Duration
}

// Durations tracks named phase durations
type Durations []duration

// Record records a duration
func (t *Durations) Record(name string, d time.Duration) {
	*t = append(*t, duration{name, d})
}

// Since records the time elapsed since start
func (t *Durations) Since(name string, start time.Time) {
	t.Record(name, time.Since(start))
}

// Fields returns one zap field per recorded phase, in recording order
func (t Durations) Fields() []zap.Field {
	fields := make([]zap.Field, 0, len(t))
	for _, entry := range t {
		fields = append(fields, zap.Duration(entry.name, entry.duration))
	}
	return fields
}

// Flush logs all recorded durations as a single entry and resets the list
func (t *Durations) Flush(l *zap.Logger, msg string) {
	l.Info(msg, t.Fields()...)
	*t = nil
}
