package mockstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventOp is the kind of change seen in the fixture directory.
type EventOp string

const (
	EventUpdated EventOp = "updated"
	EventRemoved EventOp = "removed"
)

// Event describes a fixture file change. Endpoint is filled in from the
// catalog and is empty for files the catalog does not know.
type Event struct {
	Op       EventOp
	FileName string
	Endpoint string
	Path     string
}

// Watch reports fixture file changes to fn until ctx is done. The fixture
// directory is created if needed so a fresh library can be watched.
func (s *Store) Watch(ctx context.Context, fn func(Event)) error {
	s.mu.Lock()
	err := s.ensureDir()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e, ok := s.toEvent(event); ok {
				fn(e)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("fixture watcher error", zap.Error(err))
		}
	}
}

func (s *Store) toEvent(event fsnotify.Event) (Event, bool) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != FileExt {
		return Event{}, false
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = EventRemoved
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		op = EventUpdated
	default:
		return Event{}, false
	}

	fileName := strings.TrimSuffix(base, FileExt)
	e := Event{Op: op, FileName: fileName, Path: event.Name}
	if record, ok := s.loadCatalog()[fileName]; ok {
		e.Endpoint = record.Endpoint
	}
	return e, true
}
