// Package audit writes a plain-text, append-only event log for external
// inspection. It is separate from the structured process log: every
// mutation and notable failure lands here with a timestamp and level.
package audit

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu  sync.Mutex
	out io.Writer
)

// Init directs audit output to the given file, rotated at 10 MB with a
// few old files kept around.
func Init(path string) {
	mu.Lock()
	defer mu.Unlock()
	out = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}
}

// SetOutput replaces the audit sink. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func write(level, message string) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	fmt.Fprintf(out, "[%s] %s: %s\n", ts, level, message)
}

// Eventf records a normal event.
func Eventf(format string, v ...interface{}) {
	write("EVENT", fmt.Sprintf(format, v...))
}

// Errorf records a failure.
func Errorf(format string, v ...interface{}) {
	write("ERROR", fmt.Sprintf(format, v...))
}
