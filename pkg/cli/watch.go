package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/logger"
)

var watchLog = logger.New("cli:watch")

// watchDebounce coalesces the burst of events editors emit per save.
const watchDebounce = 300 * time.Millisecond

// watchAndRun executes fn once, then again after every change to one of
// the watched workflow files, until ctx is cancelled. A failing run does
// not stop the watch; the next save gets a fresh attempt.
func watchAndRun(ctx context.Context, paths []string, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directories: editors replace files on save, which
	// drops a watch registered on the file itself.
	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	runAndReport := func() {
		if err := fn(); err != nil && err != errFailed {
			fmt.Println(console.FormatErrorMessage(err.Error()))
		}
	}

	runAndReport()
	fmt.Println(console.FormatInfoMessage("watching for changes, press Ctrl+C to stop"))

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			watchLog.Printf("Workflow changed: path=%s, op=%s", abs, event.Op)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			watchLog.Printf("Watcher error: %v", err)
		case <-pending:
			runAndReport()
			fmt.Println(console.FormatInfoMessage("watching for changes, press Ctrl+C to stop"))
		}
	}
}
