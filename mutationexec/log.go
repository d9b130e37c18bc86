package mutationexec

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/timefmt-go"
)

// LogLevel represents the severity level for logs.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLogLevel parses a string into a LogLevel. Unknown strings map to
// LevelWarn.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToUpper(s)
	if s == "WARNING" {
		return LevelWarn
	}
	for l, name := range levelNames {
		if s == name {
			return LogLevel(l)
		}
	}
	return LevelWarn
}

// Logger is the interface used by the analyzer for logging.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With returns a child logger augmented with the provided fields.
	With(fields map[string]any) Logger
}

const logTimeFormat = "%Y-%m-%dT%H:%M:%S.%fZ"

// textFormatter emits one line per entry:
//
//	[LEVEL] ts msg key1=val1 key2=val2
type textFormatter struct {
	includeTimestamp bool
}

func newTextFormatter() *textFormatter {
	return &textFormatter{includeTimestamp: true}
}

// format renders an entry; fields is the output of renderFields.
func (f *textFormatter) format(ts time.Time, level LogLevel, msg, fields string) []byte {
	b := make([]byte, 0, 96+len(msg)+len(fields))
	b = append(b, '[')
	b = append(b, level.String()...)
	b = append(b, "] "...)
	if f.includeTimestamp {
		b = append(b, timefmt.Format(ts.UTC(), logTimeFormat)...)
		b = append(b, ' ')
	}
	b = append(b, msg...)
	b = append(b, fields...)
	return append(b, '\n')
}

// renderFields renders fields as " k=v" pairs sorted by key.
func renderFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fieldValue(fields[k]))
	}
	return b.String()
}

// fieldValue quotes values containing whitespace or control characters.
func fieldValue(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		return fmt.Sprint(v)
	}
	if strings.IndexFunc(s, func(r rune) bool { return r <= ' ' }) >= 0 {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// logSink is the writer shared by a logger and every child derived from it.
type logSink struct {
	mu        sync.Mutex
	out       io.Writer
	formatter *textFormatter
}

func (s *logSink) write(level LogLevel, msg, fields string) {
	line := s.formatter.format(time.Now(), level, msg, fields)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.out.Write(line)
}

// textLogger writes to a logSink. Its context fields are rendered once, when
// the logger is derived.
type textLogger struct {
	sink     *logSink
	level    LogLevel
	fields   map[string]any
	rendered string
}

// NewLogger creates a text logger with the given level.
// If w is nil, os.Stderr is used.
func NewLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &textLogger{
		sink:  &logSink{out: w, formatter: newTextFormatter()},
		level: level,
	}
}

func (l *textLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &textLogger{
		sink:     l.sink,
		level:    l.level,
		fields:   merged,
		rendered: renderFields(merged),
	}
}

func (l *textLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *textLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *textLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *textLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *textLogger) logf(level LogLevel, format string, args ...any) {
	if level > l.level {
		return
	}
	l.sink.write(level, fmt.Sprintf(format, args...), l.rendered)
}

// discardLogger drops everything.
type discardLogger struct{}

func (discardLogger) Debugf(string, ...any)        {}
func (discardLogger) Infof(string, ...any)         {}
func (discardLogger) Warnf(string, ...any)         {}
func (discardLogger) Errorf(string, ...any)        {}
func (d discardLogger) With(map[string]any) Logger { return d }

// referenceSummary renders a Reference compactly for logs, e.g.
// `{object,array,"a",+3}`. Containers are named, never expanded.
func referenceSummary(r *Reference, max int) string {
	items := make([]string, 0, r.Len())
	for _, p := range r.Get() {
		switch p := p.(type) {
		case Primitive:
			items = append(items, p.String())
		case Intrinsic:
			items = append(items, p.String())
		case Builtin:
			items = append(items, p.String())
		case *Function:
			if p.Name != "" {
				items = append(items, "fn "+p.Name)
			} else {
				items = append(items, "fn")
			}
		default:
			items = append(items, p.Kind().String())
		}
	}
	if max > 0 && len(items) > max {
		items = append(items[:max], fmt.Sprintf("+%d", len(items)-max))
	}
	return "{" + strings.Join(items, ",") + "}"
}
