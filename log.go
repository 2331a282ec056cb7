package staged

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the narrow logging surface the Planner and Producer use: debug
// tracing of axis decisions and the "weak element dropped" notice (spec
// §4.3.1, §9). It is satisfied by github.com/charmbracelet/log's *log.Logger
// (see NewCharmLogger) but kept as an interface so the Planner's purity
// (spec §5: "It must not call user factories", and more generally must not
// reach out to ambient global state) is not compromised by a hard
// dependency on a concrete logging backend.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// discardLogger is the default Logger: every call is a no-op. Planner and
// Producer use this unless a caller supplies one via NewPlanner/
// NewProducer or ProduceOptions.Logger, keeping planning silent by default.
type discardLogger struct{}

func (discardLogger) Debugf(string, ...any) {}
func (discardLogger) Infof(string, ...any)  {}
func (discardLogger) Errorf(string, ...any) {}

// charmLogger adapts github.com/charmbracelet/log to the Logger interface.
type charmLogger struct {
	l *charmlog.Logger
}

// NewCharmLogger builds a Logger backed by github.com/charmbracelet/log,
// writing to stderr with the given level (e.g. charmlog.DebugLevel to see
// Planner axis tracing).
func NewCharmLogger(level charmlog.Level) Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "staged",
	})
	l.SetLevel(level)
	return &charmLogger{l: l}
}

func (c *charmLogger) Debugf(format string, args ...any) { c.l.Debugf(format, args...) }
func (c *charmLogger) Infof(format string, args ...any)  { c.l.Infof(format, args...) }
func (c *charmLogger) Errorf(format string, args ...any) { c.l.Errorf(format, args...) }
