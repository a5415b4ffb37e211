package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions mirrors the logging section of the production config.
type LoggerOptions struct {
	Output     string // stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// SetupLogger points the standard logger at the configured destination.
// File output rotates via lumberjack so long-running deployments do not
// fill the disk.
func SetupLogger(opts LoggerOptions) error {
	var writers []io.Writer

	switch opts.Output {
	case "stdout", "":
		writers = append(writers, os.Stdout)
	case "file", "both":
		if opts.FilePath == "" {
			opts.FilePath = "logs/webstar.log"
		}
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		})
		if opts.Output == "both" {
			writers = append(writers, os.Stdout)
		}
	default:
		writers = append(writers, os.Stdout)
	}

	log.SetOutput(io.MultiWriter(writers...))
	log.SetFlags(log.LstdFlags | log.LUTC)
	return nil
}
