package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

type ChangeKind int

const (
	ChangeUnknown ChangeKind = iota
	ChangeSpec
	ChangeScript
	ChangeSkeleton
	ChangeAtlas
	ChangeTexture
	ChangeSound
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSpec:
		return "spec"
	case ChangeScript:
		return "script"
	case ChangeSkeleton:
		return "skeleton"
	case ChangeAtlas:
		return "atlas"
	case ChangeTexture:
		return "texture"
	case ChangeSound:
		return "sound"
	default:
		return "unknown"
	}
}

// Change is a debounced edit to a watched file.
type Change struct {
	Path string
	Kind ChangeKind
}

type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewWatcher watches dirs for edits to prefabs, scripts and skeleton
// assets. Directories that do not exist are skipped.
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	added := 0
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			continue
		}
		added++
	}
	if added == 0 && len(dirs) > 0 {
		_ = w.Close()
		return nil, &missingDirsError{dirs: dirs}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	watcher.wg.Add(1)
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind := Classify(event.Name)
			if kind == ChangeUnknown {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- Change{Path: event.Name, Kind: kind}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Classify maps a file name to the kind of content it holds.
func Classify(path string) ChangeKind {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".skel.yaml"):
		return ChangeSkeleton
	case strings.HasSuffix(name, ".atlas.yaml"):
		return ChangeAtlas
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return ChangeSpec
	case ".tengo":
		return ChangeScript
	case ".png":
		return ChangeTexture
	case ".wav":
		return ChangeSound
	}
	return ChangeUnknown
}

type missingDirsError struct {
	dirs []string
}

func (e *missingDirsError) Error() string {
	return "prefabs: none of the watch directories exist: " + strings.Join(e.dirs, ", ")
}
