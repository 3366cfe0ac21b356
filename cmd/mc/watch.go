package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/MikeyBeez/mission-control/internal/config"
	"github.com/MikeyBeez/mission-control/internal/debug"
	"github.com/MikeyBeez/mission-control/internal/storage/jsonl"
	"github.com/MikeyBeez/mission-control/internal/ui"
)

// Debouncer coalesces bursts of filesystem events into a single callback.
// Full rewrites of the active log produce create+write+rename flurries; we
// only want one re-render per burst.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fn    func()
}

// NewDebouncer creates a debouncer invoking fn after delay of quiet
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)arms the debounce timer
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the task directory and re-render the ready queue on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := openMission()
		if err != nil {
			return err
		}

		render := func() {
			ready, err := mc.ListReadyWork()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return
			}
			fmt.Printf("\n%s %s — %d task(s) ready\n", ui.RenderAccent("👀"),
				time.Now().Format("15:04:05"), len(ready))
			for i, t := range ready {
				fmt.Printf("%d. [%s] %s: %s\n", i+1,
					ui.RenderPriority(t.Priority), ui.RenderID(t.ID), t.Title)
			}
		}

		delay := config.GetDuration("watch-debounce")
		if delay <= 0 {
			delay = 500 * time.Millisecond
		}
		debouncer := NewDebouncer(delay, render)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directory, not the file: atomic rewrites replace the
		// file via rename, which would orphan a file-level watch.
		if err := watcher.Add(mc.TaskDir()); err != nil {
			return fmt.Errorf("watching %s: %w", mc.TaskDir(), err)
		}

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

		render()
		fmt.Printf("%s watching %s (ctrl-c to stop)\n", ui.RenderMuted("·"), mc.TaskDir())

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != jsonl.TasksFile {
					continue
				}
				debug.Logf("watch event: %s %s", event.Op, event.Name)
				debouncer.Trigger()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
			case <-sigc:
				fmt.Println()
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
