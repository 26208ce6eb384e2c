package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchSettings re-reads config.yaml whenever it changes on disk and hands
// the fresh settings to onChange. The returned stop function releases the
// watcher. Parse failures are skipped; the last good settings stay in effect.
func WatchSettings(onChange func(*Settings)) (func(), error) {
	configFile, err := GetConfigFile()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors often replace the file, which would
	// drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(configFile)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(configFile) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				settings, err := LoadSettings()
				if err != nil {
					continue
				}
				onChange(settings)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
