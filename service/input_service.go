package service

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"androidmirror/models"
)

const inputQueueCapacity = 256

// InputService owns one device's InputManager and the single goroutine
// all of its events are dispatched on. Producers (websocket readers, the
// HTTP API, the touchmap file watcher) post events; only Run touches the
// manager.
type InputService struct {
	deviceID string
	im       *InputManager
	events   chan *models.InputEvent
	watcher  *fsnotify.Watcher

	closeOnce sync.Once
	done      chan struct{}
}

func NewInputService(deviceID string, im *InputManager) *InputService {
	return &InputService{
		deviceID: deviceID,
		im:       im,
		events:   make(chan *models.InputEvent, inputQueueCapacity),
		done:     make(chan struct{}),
	}
}

// Post enqueues an event for dispatch. Non-blocking: a full queue drops
// the event and returns false.
func (s *InputService) Post(ev *models.InputEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// Run dispatches events until stopped
func (s *InputService) Run() {
	for {
		select {
		case ev := <-s.events:
			s.im.HandleEvent(ev)
		case <-s.done:
			return
		}
	}
}

// WatchTouchmap hot-reloads the touchmap when the configured file changes
// on disk. The reload itself runs through the event loop, so the manager
// stays single-threaded.
func (s *InputService) WatchTouchmap(path string) error {
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory: editors often replace the file on save
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					log.Printf("🔄 [%s] Touchmap file changed, reloading", s.deviceID)
					s.Post(&models.InputEvent{Type: models.EventTouchmapReload})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [%s] Touchmap watcher error: %v", s.deviceID, err)
			case <-s.done:
				return
			}
		}
	}()

	return nil
}

// Stop shuts the event loop down; pending events are discarded
func (s *InputService) Stop() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			s.watcher.Close()
		}
	})
}
