package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"vdpm.dev/cli/internal/core/domain"
)

// Options controls where and how much vdpm logs
type Options struct {
	// Dir receives one log file per run.
	Dir   string
	Level string
	// Debug forces the debug level regardless of Level.
	Debug bool
	// DebugTTY, when set, mirrors log output to that terminal device in
	// human-readable form, e.g. a second terminal's /dev/pts/N.
	DebugTTY string
	// Now is used for the file name timestamp; defaults to time.Now.
	Now func() time.Time
}

// New builds the process logger. The interactive editor owns the terminal,
// so logs go to a file in opts.Dir instead of stderr. The returned closer
// releases the file handles.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return zerolog.Nop(), nil, domain.NewFileAccessError("create logs directory", opts.Dir, err)
	}

	path := filepath.Join(opts.Dir, FileName(now()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, domain.NewFileAccessError("open log file", path, err)
	}

	closers := multiCloser{file}
	var writer io.Writer = file

	if opts.DebugTTY != "" {
		tty, err := os.OpenFile(opts.DebugTTY, os.O_WRONLY, 0)
		if err != nil {
			file.Close()
			return zerolog.Nop(), nil, domain.NewFileAccessError("open debug tty", opts.DebugTTY, err)
		}
		closers = append(closers, tty)
		writer = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: tty, TimeFormat: time.Kitchen})
	}

	level := ParseLevel(opts.Level)
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Str("app", "vdpm").Logger()
	return logger, closers, nil
}

// FileName returns the log file name for a run started at t
func FileName(t time.Time) string {
	return fmt.Sprintf("vdpm_%s.log", t.Format("02-01-2006-15:04"))
}

// ParseLevel converts a level name, falling back to info
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
