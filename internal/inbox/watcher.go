package inbox

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is imported.
const DefaultSettle = 300 * time.Millisecond

// Callback is called after each file is handled.
type Callback func(Result)

// Watch processes files already in the inbox, then watches dir (the
// absolute inbox root) and imports new or rewritten CSV files until ctx is
// cancelled. Writes are debounced by settle so half-copied files are not
// picked up.
func (in *Inbox) Watch(ctx context.Context, dir string, settle time.Duration, cb Callback) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	in.logger.Info("inbox: watching", slog.String("dir", dir))

	initial, err := in.Scan()
	if err != nil {
		in.logger.Warn("inbox: initial scan failed", slog.String("error", err.Error()))
	}
	for _, r := range initial {
		notify(cb, r)
	}

	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func(name string) {
		pending[name] = struct{}{}
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			for name := range pending {
				delete(pending, name)
				res, err := in.Process(name)
				if err != nil {
					// Already moved or removed by someone else.
					in.logger.Debug("inbox: skip", slog.String("file", name), slog.String("error", err.Error()))
					continue
				}
				notify(cb, res)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			base := filepath.Base(ev.Name)
			if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), csvExt) {
				continue
			}
			if filepath.Dir(ev.Name) != filepath.Clean(dir) {
				continue
			}
			schedule(base)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func notify(cb Callback, r Result) {
	if cb != nil {
		cb(r)
	}
}
