package infrastructure

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
	"weathersub.app/internal/ports"
	"weathersub.app/pkg/errors"
)

const (
	defaultLogMaxSizeMB  = 50
	defaultLogMaxBackups = 5
	defaultLogMaxAgeDays = 14
)

var _ ports.Logger = (*FileLoggerAdapter)(nil)

// FileLoggerConfig controls rotation of the provider request log.
type FileLoggerConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FileLoggerAdapter writes one JSON object per line to a rotating file.
type FileLoggerAdapter struct {
	logger zerolog.Logger
	closer io.Closer
}

func NewFileLoggerAdapter(cfg FileLoggerConfig) (*FileLoggerAdapter, error) {
	if cfg.Path == "" {
		return nil, errors.NewConfigurationError("log file path cannot be empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, errors.NewConfigurationError("failed to create log directory", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    orDefault(cfg.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, defaultLogMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   cfg.Compress,
	}

	return &FileLoggerAdapter{
		logger: newZerolog(rotator),
		closer: rotator,
	}, nil
}

// NewWriterLoggerAdapter logs to w with the same format as the file logger.
func NewWriterLoggerAdapter(w io.Writer) *FileLoggerAdapter {
	return &FileLoggerAdapter{logger: newZerolog(w)}
}

func newZerolog(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func (f *FileLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	f.write(f.logger.Debug(), msg, fields)
}

func (f *FileLoggerAdapter) Info(msg string, fields ...ports.Field) {
	f.write(f.logger.Info(), msg, fields)
}

func (f *FileLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	f.write(f.logger.Warn(), msg, fields)
}

func (f *FileLoggerAdapter) Error(msg string, fields ...ports.Field) {
	f.write(f.logger.Error(), msg, fields)
}

// Close flushes and closes the underlying file, if any.
func (f *FileLoggerAdapter) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func (f *FileLoggerAdapter) write(event *zerolog.Event, msg string, fields []ports.Field) {
	for _, field := range fields {
		switch v := field.Value.(type) {
		case error:
			event = event.AnErr(field.Key, v)
		case string:
			event = event.Str(field.Key, v)
		default:
			event = event.Interface(field.Key, v)
		}
	}
	event.Msg(msg)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
