package log

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported encodings
const (
	EncodingConsole = "console" // <time> - <LEVEL> - <message>
	EncodingJSON    = "json"
)

// TimeLayout is the layout of the timestamp of each line
const TimeLayout = "2006-01-02 15:04:05,000"

// Options configures Setup
type Options struct {
	// File is the log file. If empty, it is derived from Caller, replacing its extension by ".log"
	File string
	// Caller is the path of the component initializing the logs (e.g. os.Args[0])
	Caller string
	// Level is the minimum level of the logged messages (default: Info)
	Level zapcore.Level
	// Encoding is one of EncodingConsole (default) or EncodingJSON
	Encoding string
	// Console receives the same lines as File (default: stderr)
	Console zapcore.WriteSyncer
}

// LogFile returns file if not empty, otherwise caller with a ".log" extension
func LogFile(file, caller string) (string, error) {
	if file != "" {
		return file, nil
	}
	if caller == "" {
		return "", fmt.Errorf("LogFile: caller or file must be provided")
	}
	return strings.TrimSuffix(caller, filepath.Ext(caller)) + ".log", nil
}

// Setup creates a logger writing every line both to the log file and to the console.
// The parent directory of the log file is created if needed.
// The returned function flushes and closes the log file.
func Setup(opts Options) (*zap.Logger, func() error, error) {
	file, err := LogFile(opts.File, opts.Caller)
	if err != nil {
		return nil, nil, fmt.Errorf("Setup.%w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, nil, fmt.Errorf("Setup.MkdirAll: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("Setup.OpenFile: %w", err)
	}

	encoder, err := newEncoder(opts.Encoding)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("Setup.%w", err)
	}
	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stderr)
	}

	logger := zap.New(zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(f), opts.Level),
		zapcore.NewCore(encoder.Clone(), console, opts.Level),
	), zap.ErrorOutput(zapcore.Lock(os.Stderr)))

	name := opts.Caller
	if name == "" {
		name = file
	}
	logger.Info("Logging initialized for " + filepath.Base(name))
	logger.Info("Log file: " + file)

	closer := func() error {
		logger.Sync()
		return f.Close()
	}
	return logger, closer, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "message",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelNameEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

func newEncoder(encoding string) (zapcore.Encoder, error) {
	switch encoding {
	case "", EncodingConsole:
		return zapcore.NewConsoleEncoder(encoderConfig()), nil
	case EncodingJSON:
		return zapcore.NewJSONEncoder(encoderConfig()), nil
	}
	return nil, fmt.Errorf("unsupported log encoding: %s", encoding)
}

// LevelName returns the name printed for the level
func LevelName(l zapcore.Level) string {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	}
	return "CRITICAL"
}

func levelNameEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}

// ParseLevel parses debug, info, warning (or warn) and error
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.EqualFold(s, "warning") {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(strings.ToLower(s))
}

type loggerKey struct{}

// WithLogger returns a context carrying the logger
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func fromContext(ctx context.Context) (*zap.Logger, bool) {
	logger, ok := ctx.Value(loggerKey{}).(*zap.Logger)
	return logger, ok && logger != nil
}

// Logger returns the logger carried by ctx, or a no-op logger
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := fromContext(ctx); ok {
		return logger
	}
	return zap.NewNop()
}

// With returns a context whose logger adds the key/value to every line
func With(ctx context.Context, key string, value interface{}) context.Context {
	return WithLogger(ctx, Logger(ctx).With(zap.Any(key, value)))
}

// Fatal logs the message then exits.
// Without a logger in ctx, the message is written to stderr.
func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	logger, ok := fromContext(ctx)
	if !ok {
		logger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), zapcore.DebugLevel))
	}
	logger.Fatal(msg, fields...)
}
