package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/agentpad/agentpad/pkg/logger"
	"github.com/agentpad/agentpad/pkg/schema"
)

// Event reports that a document's canonical text changed on disk for a
// reason outside any controller: an external editor, a git checkout, a
// different tool. The new text is read eagerly so consumers can hand it
// straight to a sync controller.
type Event struct {
	Path string
	Text string
}

// Watch streams external document changes until the context is canceled.
// Newly created subdirectories are picked up as they appear. The channel
// is closed when watching stops.
func (w *Workspace) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	if err := w.addDirs(watcher, w.root); err != nil {
		watcher.Close()
		return nil, err
	}

	events := make(chan Event)
	go w.watchLoop(ctx, watcher, events)
	return events, nil
}

func (w *Workspace) addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch directory '%s'", path)
		}
		return nil
	})
}

func (w *Workspace) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, events chan<- Event) {
	defer close(events)
	defer watcher.Close()

	log := logger.G(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ctx, watcher, ev, events)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("File watcher error")
		}
	}
}

func (w *Workspace) handleFsEvent(ctx context.Context, watcher *fsnotify.Watcher, ev fsnotify.Event, events chan<- Event) {
	log := logger.G(ctx)

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addDirs(watcher, ev.Name); err != nil {
				log.WithError(err).WithField("dir", ev.Name).Warn("Failed to watch new directory")
			}
			return
		}
	}

	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return
	}
	if !strings.HasSuffix(ev.Name, ".md") {
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if w.ignored(rel) || schema.KindForPath(rel) == schema.KindUnknown {
		return
	}

	text, err := w.Load(ctx, rel)
	if err != nil {
		// Writes race with renames during atomic saves; a missing file
		// here just means another event is coming
		log.WithError(err).WithField("path", rel).Debug("Skipping unreadable change")
		return
	}

	select {
	case events <- Event{Path: rel, Text: text}:
	case <-ctx.Done():
	}
}
