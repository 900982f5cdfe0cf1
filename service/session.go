package service

import (
	"fmt"
	"log"
	"sync"

	"androidmirror/adb"
	"androidmirror/config"
	"androidmirror/models"
)

// Session is one device's active control pipeline: scrcpy server session,
// outbound controller, screen state and the input event loop.
type Session struct {
	DeviceID string

	client     *ScrcpyClient
	controller *Controller
	screen     *Screen
	filePusher *FilePusher
	input      *InputService
}

// Screen exposes the session's screen state (read-only use outside the
// input goroutine)
func (s *Session) Screen() *Screen { return s.screen }

// PostEvent forwards a host input event into the session's event loop
func (s *Session) PostEvent(ev *models.InputEvent) bool {
	return s.input.Post(ev)
}

// Touchmap returns the session's current touchmap, nil if none
func (s *Session) Touchmap() *GamepadTouchmap {
	return s.input.im.Touchmap()
}

// SessionManager starts and stops per-device control sessions
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	adbClient *adb.ADBClient
	store     *config.Store
	notifier  ScreenNotifier
}

func NewSessionManager(adbClient *adb.ADBClient, store *config.Store, notifier ScreenNotifier) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		adbClient: adbClient,
		store:     store,
		notifier:  notifier,
	}
}

// Get returns the active session for a device, nil if none
func (sm *SessionManager) Get(deviceID string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.sessions[deviceID]
}

// Start builds and launches the control pipeline for a device
func (sm *SessionManager) Start(device *models.Device) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if existing, ok := sm.sessions[device.ID]; ok {
		return existing, nil
	}

	settings, err := sm.store.GetInputSettings(device.ID)
	if err != nil {
		log.Printf("⚠️ [%s] Failed to load input settings, using defaults: %v", device.ID, err)
	}

	client := NewScrcpyClient(sm.adbClient, device.ADBDeviceID)
	conn, err := client.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start scrcpy session: %w", err)
	}

	controller := NewController(conn)
	deviceID := device.ID
	controller.OnDeviceClipboard = func(text string) {
		// surface the device clipboard to the front-end
		sm.notifier.NotifyDevice(deviceID, map[string]interface{}{
			"type": "clipboard",
			"text": text,
		})
	}

	screen := NewScreen(device.ID, client.FrameSize(), true, sm.notifier)
	filePusher := NewFilePusher(sm.adbClient, device.ADBDeviceID)

	im := NewInputManager(&InputManagerParams{
		Controller:     controller,
		KeyProcessor:   NewInjectKeyProcessor(controller),
		MouseProcessor: NewInjectMouseProcessor(controller),
		Screen:         screen,
		FilePusher:     filePusher,
		Clipboard:      &Clipboard{},
		MouseBindings: MouseBindings{
			RightClick:  MouseBinding(settings.RightClick),
			MiddleClick: MouseBinding(settings.MiddleClick),
			Click4:      MouseBinding(settings.Click4),
			Click5:      MouseBinding(settings.Click5),
		},
		ShortcutMods:           settings.ShortcutMods,
		ForwardAllClicks:       settings.ForwardAllClicks,
		LegacyPaste:            settings.LegacyPaste,
		ClipboardAutosync:      settings.ClipboardAutosync,
		ForwardGameControllers: settings.ForwardGameControllers,
		TouchmapFile:           settings.TouchmapFile,
	})

	input := NewInputService(device.ID, im)
	if err := input.WatchTouchmap(settings.TouchmapFile); err != nil {
		log.Printf("⚠️ [%s] Touchmap watcher unavailable: %v", device.ID, err)
	}

	session := &Session{
		DeviceID:   device.ID,
		client:     client,
		controller: controller,
		screen:     screen,
		filePusher: filePusher,
		input:      input,
	}

	go controller.Run()
	go controller.RunReader()
	go filePusher.Run()
	go input.Run()

	sm.sessions[device.ID] = session
	log.Printf("✅ [%s] Control session started", device.ID)
	return session, nil
}

// Stop tears down a device's session
func (sm *SessionManager) Stop(deviceID string) {
	sm.mu.Lock()
	session, ok := sm.sessions[deviceID]
	if ok {
		delete(sm.sessions, deviceID)
	}
	sm.mu.Unlock()

	if !ok {
		return
	}
	session.input.Stop()
	session.filePusher.Stop()
	session.controller.Stop()
	session.client.Stop()
	log.Printf("🛑 [%s] Control session stopped", deviceID)
}

// StopAll tears down every active session
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.Unlock()

	for _, id := range ids {
		sm.Stop(id)
	}
}
