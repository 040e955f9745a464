package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configure the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	outputLock sync.Mutex
	console    io.Writer = os.Stdout
	useColor             = true
	logFile    *lumberjack.Logger
)

// SetConsole sets the writer used for console output. A nil writer disables console output.
func SetConsole(w io.Writer, color bool) {
	outputLock.Lock()
	defer outputLock.Unlock()

	console = w
	useColor = color
}

// SetFile enables writing to a rotating log file. Passing nil disables it.
func SetFile(opts *FileOptions) {
	outputLock.Lock()
	defer outputLock.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if opts == nil || opts.Path == "" {
		return
	}

	logFile = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
}

func writeLine(line *logLine) {
	outputLock.Lock()
	defer outputLock.Unlock()

	if console != nil {
		_, _ = fmt.Fprintln(console, formatLine(line, useColor))
	}
	if logFile != nil {
		_, _ = fmt.Fprintln(logFile, formatLine(line, false))
	}
}

func closeOutputs() {
	outputLock.Lock()
	defer outputLock.Unlock()

	if logFile != nil {
		_ = logFile.Close()
	}
}

func writer(shutdown <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		// wait until logs need to be processed
		select {
		case <-logsWaiting:
			logsWaitingFlag.UnSet()
		case <-forceEmptyingOfBuffer:
		case <-shutdown:
			drainBuffer()
			writeLine(&logLine{
				msg:       "===== LOGGING STOPPED =====",
				level:     WarningLevel,
				timestamp: time.Now(),
			})
			return
		}

		// give the buffer a moment to fill, unless it is already full
		select {
		case <-time.After(10 * time.Millisecond):
		case <-forceEmptyingOfBuffer:
		case <-shutdown:
		}

		drainBuffer()
	}
}

func drainBuffer() {
	for {
		select {
		case line := <-logBuffer:
			writeLine(line)
		default:
			return
		}
	}
}
