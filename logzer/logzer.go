package logzer

import (
	"container/ring"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// lastErrors keeps recent error records for the status endpoint
var lastErrors = &LogBuffer{
	Level: zerolog.ErrorLevel,
	Size:  10,
}

// RedactRe masks values of password, community, and token like fields
var RedactRe = map[*regexp.Regexp][]byte{
	regexp.MustCompile(`((?i:password|community|token)"[^:]*:[^"]*)"(?:[^\\"]*(?:\\")*[\\]*)*"`): []byte(`${1}"***"`),
}

type options struct {
	colors     bool
	condense   time.Duration
	lastErrors int
	level      zerolog.Level
	logFile    io.Writer
	out        io.Writer
	timeFormat string
}

// Option defines logger writer option
type Option func(*options)

// WithColors sets console colors
func WithColors(b bool) Option {
	return func(o *options) { o.colors = b }
}

// WithCondense enables condensing similar records
func WithCondense(d time.Duration) Option {
	return func(o *options) { o.condense = d }
}

// WithLastErrors sets count of buffered error records
func WithLastErrors(n int) Option {
	return func(o *options) { o.lastErrors = n }
}

// WithLevel sets global level
func WithLevel(lvl zerolog.Level) Option {
	return func(o *options) { o.level = lvl }
}

// WithLogFile adds file output
func WithLogFile(w io.Writer) Option {
	return func(o *options) { o.logFile = w }
}

// WithOutput replaces console output, stdout by default
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithTimeFormat sets console time format
func WithTimeFormat(s string) Option {
	return func(o *options) { o.timeFormat = s }
}

// NewLoggerWriter builds the writers chain:
// condense -> filter -> (console [+ file], last errors)
func NewLoggerWriter(opts ...Option) zerolog.LevelWriter {
	o := &options{
		lastErrors: 10,
		level:      zerolog.InfoLevel,
		out:        os.Stdout,
		timeFormat: time.RFC3339,
	}
	for _, opt := range opts {
		opt(o)
	}
	zerolog.SetGlobalLevel(o.level)

	prev := lastErrors.Records()
	lastErrors = &LogBuffer{Level: zerolog.ErrorLevel, Size: max(o.lastErrors, 1)}
	for _, p := range prev {
		_, _ = lastErrors.WriteLevel(p.lvl, p.buf)
	}

	out := o.out
	if o.logFile != nil {
		out = io.MultiWriter(o.out, o.logFile)
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !o.colors,
		TimeFormat: o.timeFormat,
	}
	return &CondenseWriter{
		Condense: o.condense,
		LevelWriter: &FilterWriter{
			LevelWriter: zerolog.MultiLevelWriter(console, lastErrors),
			Re:          RedactRe,
		},
	}
}

// LastErrors returns recent error records
func LastErrors() []LogRecord {
	return lastErrors.Records()
}

// WriteLogBuffer writes buffered records to the writer if level passed
func WriteLogBuffer(lb *LogBuffer, w zerolog.LevelWriter) {
	lvl := zerolog.GlobalLevel()
	for _, p := range lb.Records() {
		if p.lvl >= lvl {
			_, _ = w.WriteLevel(p.lvl, p.buf)
		}
	}
}

// CondenseWriter handles similar writes by caller field
type CondenseWriter struct {
	zerolog.LevelWriter
	mu       sync.Mutex
	once     sync.Once
	cache    *cache.Cache
	callerRe *regexp.Regexp
	Condense time.Duration
}

// Write implements io.Writer interface
func (w *CondenseWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *CondenseWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	if w.Condense <= 0 {
		return w.LevelWriter.WriteLevel(lvl, p)
	}
	w.once.Do(func() {
		w.cache = cache.New(w.Condense*2, w.Condense/4)
		w.cache.OnEvicted(w.flush)
		w.callerRe = regexp.MustCompile(`"` + zerolog.CallerFieldName + `":"[^"]*"`)
	})
	w.mu.Lock()
	defer w.mu.Unlock()

	ck := string(append([]byte{byte(lvl), ':'}, w.callerRe.Find(p)...))
	/* go-cache janitor may be late, see patrickmn/go-cache#48 */
	w.cache.DeleteExpired()
	if _, ok := w.cache.Get(ck); ok {
		_ = w.cache.Increment(ck, 1)
		return len(p), nil
	}
	_ = w.cache.Add(ck, uint16(0), w.Condense)
	return w.LevelWriter.WriteLevel(lvl, p)
}

func (w *CondenseWriter) flush(ck string, i any) {
	hits := i.(uint16)
	if hits == 0 {
		return
	}
	lvl, caller := zerolog.Level(ck[0]), ck[2:]
	buf := append(make([]byte, 0, 200), `{"`...)
	buf = append(buf, zerolog.LevelFieldName...)
	buf = append(buf, `":"`...)
	buf = append(buf, lvl.String()...)
	buf = append(buf, `","`...)
	buf = append(buf, zerolog.TimestampFieldName...)
	buf = append(buf, `":`...)
	buf = appendTime(buf, time.Now())
	if caller != "" {
		buf = append(buf, ',')
		buf = append(buf, caller...)
	}
	buf = append(buf, `,"`...)
	buf = append(buf, zerolog.MessageFieldName...)
	buf = append(buf, `":"[condensed `...)
	buf = strconv.AppendInt(buf, int64(hits), 10)
	buf = append(buf, ` more entries last `...)
	buf = strconv.AppendInt(buf, int64(w.Condense.Seconds()), 10)
	buf = append(buf, " seconds]\"}\n"...)
	_, _ = w.LevelWriter.WriteLevel(lvl, buf)
}

func appendTime(dst []byte, ts time.Time) []byte {
	switch zerolog.TimeFieldFormat {
	case zerolog.TimeFormatUnix:
		return strconv.AppendInt(dst, ts.Unix(), 10)
	case zerolog.TimeFormatUnixMs:
		return strconv.AppendInt(dst, ts.UnixMilli(), 10)
	case zerolog.TimeFormatUnixMicro:
		return strconv.AppendInt(dst, ts.UnixMicro(), 10)
	}
	dst = append(dst, '"')
	dst = ts.AppendFormat(dst, zerolog.TimeFieldFormat)
	return append(dst, '"')
}

// FilterWriter implements sanitizing writes by Regexp map
type FilterWriter struct {
	zerolog.LevelWriter
	Re map[*regexp.Regexp][]byte
}

// Write implements io.Writer interface
func (w *FilterWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *FilterWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	n := len(p)
	for re, repl := range w.Re {
		p = re.ReplaceAll(p, repl)
	}
	if _, err := w.LevelWriter.WriteLevel(lvl, p); err != nil {
		return 0, err
	}
	return n, nil
}

// LogBuffer keeps the last Size writes if level passed
type LogBuffer struct {
	mu    sync.Mutex
	once  sync.Once
	ring  *ring.Ring
	Level zerolog.Level
	Size  int
}

// Records returns collected writes, oldest first
func (lb *LogBuffer) Records() []LogRecord {
	lb.once.Do(lb.init)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	rec := []LogRecord{}
	lb.ring.Do(func(p any) {
		if p != nil {
			rec = append(rec, p.(LogRecord))
		}
	})
	return rec
}

func (lb *LogBuffer) init() {
	lb.ring = ring.New(max(lb.Size, 1))
}

// Write implements io.Writer interface
func (lb *LogBuffer) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel implements zerolog.LevelWriter interface
func (lb *LogBuffer) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	lb.once.Do(lb.init)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lvl >= lb.Level && lvl < zerolog.NoLevel {
		/* source buffer is reused by zerolog */
		cp := make([]byte, len(p))
		copy(cp, p)
		lb.ring.Value = LogRecord{cp, lvl}
		lb.ring = lb.ring.Next()
	}
	return len(p), nil
}

// LogRecord wraps JSON data from logger
type LogRecord struct {
	buf []byte
	lvl zerolog.Level
}

// MarshalJSON implements json.Marshaler interface
func (p LogRecord) MarshalJSON() ([]byte, error) { return p.buf, nil }
