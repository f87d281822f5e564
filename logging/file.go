package logging

import (
	"io"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotating log file.
type FileConfig struct {
	Path string
	// MaxSizeMB is the size at which the file is rotated. Zero uses lumberjack's default of 100.
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// NewFileCore returns a core writing JSON lines to a rotating file, and the closer for that file.
func NewFileCore(cfg FileConfig) (zapcore.Core, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	encoderCfg := NewEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(file),
		zapcore.DebugLevel,
	)
	return core, file
}

// NewLoggerWithFile returns a logger at the given level that writes to stdout and to a rotating file.
// The returned closer releases the file.
func NewLoggerWithFile(name string, level Level, cfg FileConfig) (Logger, io.Closer) {
	fileCore, closer := NewFileCore(cfg)
	return newImpl(name, level, zapcore.NewTee(newStdoutCore(), fileCore)), closer
}
