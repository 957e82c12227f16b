package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much the logger writes
type Options struct {
	Verbose      bool // enables debug level
	Microseconds bool // timestamps with microsecond precision
}

// Logger wraps a zap sugared logger with printf-style helpers
type Logger struct {
	*zap.SugaredLogger
}

// NewWriter creates a new logger that writes to the provided writer
func NewWriter(w io.Writer, opts Options) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	timeLayout := "2006/01/02 15:04:05"
	if opts.Microseconds {
		timeLayout = "2006/01/02 15:04:05.000000"
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = ""
	encoderConfig.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(zapcore.AddSync(w)), level)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Printf logs at info level
func (l *Logger) Printf(format string, args ...interface{}) {
	l.Infof(format, args...)
}

// Println logs at info level
func (l *Logger) Println(args ...interface{}) {
	l.Infoln(args...)
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

// Close flushes buffered entries
func (l *Logger) Close() error {
	return l.Sync()
}
