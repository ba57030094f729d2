package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// DirWatcher calls a handler whenever a *.json file in a directory is created,
// written, renamed or removed. Bursts of events are coalesced into one call.
type DirWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer

	l logger.Logger
}

func New(dir string, l logger.Logger) (*DirWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	return &DirWatcher{
		dir:      dir,
		watcher:  w,
		debounce: defaultDebounce,
		l:        l,
	}, nil
}

// WithDebounce sets the quiet period before the handler runs.
func (w *DirWatcher) WithDebounce(d time.Duration) *DirWatcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is done or the watcher fails.
func (w *DirWatcher) Watch(ctx context.Context, handler func(ctx context.Context)) error {
	ctx = wrap.WithAction(ctx, types.ActionWatcherEvent)
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.l.Debug(ctx, "metrics directory changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			w.schedule(ctx, handler)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *DirWatcher) Close() error {
	return w.watcher.Close()
}

func (w *DirWatcher) schedule(ctx context.Context, handler func(ctx context.Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		handler(ctx)
	})
}

func (w *DirWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

func relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
