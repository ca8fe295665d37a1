package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neboloop/runbook/internal/logging"
)

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	base     Config
	path     string
	onChange func(Config)
	debounce time.Duration

	w    *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// Watch overlays path onto base whenever the file is written and passes the
// result to onChange. The directory is watched so editors that replace the
// file are handled. Invalid files are logged and skipped.
func Watch(base Config, path string, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}

	cw := &Watcher{
		base:     base,
		path:     abs,
		onChange: onChange,
		debounce: 100 * time.Millisecond,
		w:        fw,
		done:     make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

func (cw *Watcher) loop() {
	defer close(cw.done)
	var timer *time.Timer
	for {
		select {
		case event, ok := <-cw.w.Events:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors often write several times in a row.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cw.debounce, cw.reload)
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			logging.Warnf("[config] watcher error: %v", err)
		}
	}
}

func (cw *Watcher) reload() {
	c, err := LoadFile(cw.base, cw.path)
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		logging.Warnf("[config] %s not reloaded: %v", cw.path, err)
		return
	}
	logging.Infof("[config] %s reloaded", cw.path)
	cw.onChange(c)
}

// Close stops watching.
func (cw *Watcher) Close() error {
	var err error
	cw.once.Do(func() {
		err = cw.w.Close()
		<-cw.done
	})
	return err
}
