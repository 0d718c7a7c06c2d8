package logging

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileAppender writes console formatted lines to a file that is rotated once it grows past
// MaxSizeMB megabytes.
type FileAppender struct {
	console ConsoleAppender
	file    *lumberjack.Logger
}

// FileAppender rotation defaults.
const (
	MaxSizeMB  = 100
	MaxBackups = 3
)

// NewFileAppender returns an appender writing to path.
func NewFileAppender(path string) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		Compress:   true,
	}
	return &FileAppender{console: NewWriterAppender(file), file: file}
}

// Write outputs the log entry to the file.
func (fa *FileAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return fa.console.Write(entry, fields)
}

// Sync is a no-op; lumberjack does not buffer.
func (fa *FileAppender) Sync() error {
	return nil
}

// Close closes the file.
func (fa *FileAppender) Close() error {
	return fa.file.Close()
}
