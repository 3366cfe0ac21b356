// Package debug provides the internal debug log sink.
//
// Engine and CLI code log through Logf; output is silent unless MC_DEBUG is
// set (stderr) or MC_DEBUG_FILE points at a log file, in which case entries
// go through a size-rotated file so long-running tool servers don't grow an
// unbounded log.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu   sync.Mutex
	sink io.Writer
	once sync.Once
)

func writer() io.Writer {
	once.Do(func() {
		if path := os.Getenv("MC_DEBUG_FILE"); path != "" {
			sink = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    5, // megabytes
				MaxBackups: 2,
				Compress:   true,
			}
			return
		}
		if os.Getenv("MC_DEBUG") != "" {
			sink = os.Stderr
		}
	})
	return sink
}

// Logf writes a debug log entry. No-op unless debug output is enabled.
func Logf(format string, args ...interface{}) {
	w := writer()
	if w == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(w, "%s mc: %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}
