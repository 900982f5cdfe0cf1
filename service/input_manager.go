package service

import (
	"log"
	"strings"

	"androidmirror/models"
)

// Mouse button bindings
type MouseBinding int

const (
	BindingDisabled MouseBinding = iota
	BindingClick
	BindingBack
	BindingHome
	BindingAppSwitch
	BindingExpandNotificationPanel
)

// MouseBindings maps the non-left buttons to actions. Left is always a
// click.
type MouseBindings struct {
	RightClick  MouseBinding
	MiddleClick MouseBinding
	Click4      MouseBinding
	Click5      MouseBinding
}

func (mb *MouseBindings) hasSecondaryClick() bool {
	return mb.RightClick == BindingClick ||
		mb.MiddleClick == BindingClick ||
		mb.Click4 == BindingClick ||
		mb.Click5 == BindingClick
}

// MaxGameControllers bounds the controller slot array
const MaxGameControllers = 4

// GameController is an opaque handle for a connected gamepad. The physical
// device lives on the front-end; the backend tracks instance IDs to bound
// and report the population.
type GameController struct {
	InstanceID uint32
}

// InputManagerParams configures a new InputManager
type InputManagerParams struct {
	Controller     *Controller
	KeyProcessor   *KeyProcessor
	MouseProcessor *MouseProcessor
	Screen         *Screen
	FilePusher     *FilePusher
	Clipboard      *Clipboard

	MouseBindings          MouseBindings
	ShortcutMods           uint8
	ForwardAllClicks       bool
	LegacyPaste            bool
	ClipboardAutosync      bool
	ForwardGameControllers bool
	TouchmapFile           string
}

// InputManager classifies host input events and either performs a local
// side effect or emits a control message to the device. Owned by a single
// goroutine; no locking on its state.
type InputManager struct {
	controller *Controller
	kp         *KeyProcessor
	mp         *MouseProcessor
	screen     *Screen
	fp         *FilePusher
	clipboard  *Clipboard

	mouseBindings     MouseBindings
	hasSecondaryClick bool

	hostShortcutMods uint16

	forwardGameControllers bool
	touchmapFile           string
	legacyPaste            bool
	clipboardAutosync      bool

	// modifier and button state tracked from events
	modState          uint16
	mouseButtonsState uint32
	lastMouseX        int32
	lastMouseY        int32

	// repeat tracking
	lastKeycode uint32
	lastMod     uint16
	keyRepeat   int

	nextSequence uint64

	vfingerDown    bool
	vfingerInvertX bool
	vfingerInvertY bool

	gameControllers [MaxGameControllers]*GameController

	gameTouchmap *GamepadTouchmap
}

func NewInputManager(params *InputManagerParams) *InputManager {
	// a key/mouse processor may not be present without a controller
	kp, mp := params.KeyProcessor, params.MouseProcessor
	if params.Controller == nil {
		kp = nil
		mp = nil
	}

	bindings := params.MouseBindings
	if params.ForwardAllClicks {
		bindings = MouseBindings{
			RightClick:  BindingClick,
			MiddleClick: BindingClick,
			Click4:      BindingClick,
			Click5:      BindingClick,
		}
	}

	im := &InputManager{
		controller:             params.Controller,
		kp:                     kp,
		mp:                     mp,
		screen:                 params.Screen,
		fp:                     params.FilePusher,
		clipboard:              params.Clipboard,
		mouseBindings:          bindings,
		hasSecondaryClick:      bindings.hasSecondaryClick(),
		hostShortcutMods:       shortcutModsToHostMod(params.ShortcutMods),
		forwardGameControllers: params.ForwardGameControllers,
		touchmapFile:           params.TouchmapFile,
		legacyPaste:            params.LegacyPaste,
		clipboardAutosync:      params.ClipboardAutosync,
		lastKeycode:            KeycodeUnknown,
		nextSequence:           1, // 0 is reserved for SequenceInvalid
	}

	if im.touchmapFile != "" {
		tm, err := ParseTouchmapFile(im.touchmapFile)
		if err != nil {
			log.Printf("❌ Failed to parse touchmap file %s: %v", im.touchmapFile, err)
		} else {
			im.gameTouchmap = tm
		}
	}

	return im
}

// Touchmap returns the currently loaded touchmap, nil if none
func (im *InputManager) Touchmap() *GamepadTouchmap {
	return im.gameTouchmap
}

// TouchmapFile returns the configured touchmap path
func (im *InputManager) TouchmapFile() string {
	return im.touchmapFile
}

// LoadTouchmap parses the file and, only on success, replaces the current
// map and routes gamepad events through it
func (im *InputManager) LoadTouchmap(filename string) bool {
	tm, err := ParseTouchmapFile(filename)
	if err != nil {
		log.Printf("❌ Failed to parse touchmap file %s: %v", filename, err)
		return false
	}
	im.gameTouchmap = tm
	im.touchmapFile = filename
	im.forwardGameControllers = false
	log.Printf("🎮 Touchmap loaded from %s (%d buttons)", filename, len(tm.Buttons))
	return true
}

// TurnOffTouchmap drops the touchmap and restores raw gamepad forwarding
func (im *InputManager) TurnOffTouchmap() {
	im.gameTouchmap = nil
	im.forwardGameControllers = true
	log.Println("🎮 Touchmap off, forwarding game controllers")
}

func (im *InputManager) isShortcutMod(mod uint16) bool {
	return mod&shortcutModsMask&im.hostShortcutMods != 0
}

// isShortcutKey reports whether the key itself is a configured shortcut
// modifier. Needed to swallow the release of the modifier key, whose mod
// field is already 0.
func (im *InputManager) isShortcutKey(keycode uint32) bool {
	m := im.hostShortcutMods
	return (m&KmodLCtrl != 0 && keycode == KeycodeLCtrl) ||
		(m&KmodRCtrl != 0 && keycode == KeycodeRCtrl) ||
		(m&KmodLAlt != 0 && keycode == KeycodeLAlt) ||
		(m&KmodRAlt != 0 && keycode == KeycodeRAlt) ||
		(m&KmodLGui != 0 && keycode == KeycodeLGui) ||
		(m&KmodRGui != 0 && keycode == KeycodeRGui)
}

func (im *InputManager) sendKeycode(keycode int, action KeyAction, name string) {
	androidAction := AKeyEventActionDown
	if action == KeyActionUp {
		androidAction = AKeyEventActionUp
	}
	msg := &ControlMsg{
		Type:    CtrlInjectKeycode,
		Action:  androidAction,
		Keycode: keycode,
	}
	if !im.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject %s'", name)
	}
}

func (im *InputManager) actionHome(action KeyAction) {
	im.sendKeycode(AKeycodeHome, action, "HOME")
}

func (im *InputManager) actionBack(action KeyAction) {
	im.sendKeycode(AKeycodeBack, action, "BACK")
}

func (im *InputManager) actionAppSwitch(action KeyAction) {
	im.sendKeycode(AKeycodeAppSwitch, action, "APP_SWITCH")
}

func (im *InputManager) actionPower(action KeyAction) {
	im.sendKeycode(AKeycodePower, action, "POWER")
}

func (im *InputManager) actionVolumeUp(action KeyAction) {
	im.sendKeycode(AKeycodeVolumeUp, action, "VOLUME_UP")
}

func (im *InputManager) actionVolumeDown(action KeyAction) {
	im.sendKeycode(AKeycodeVolumeDown, action, "VOLUME_DOWN")
}

func (im *InputManager) actionMenu(action KeyAction) {
	im.sendKeycode(AKeycodeMenu, action, "MENU")
}

// pressBackOrTurnScreenOn turns the screen on if it was off, presses BACK
// otherwise. If the screen is off, it is turned on only on a DOWN action.
func (im *InputManager) pressBackOrTurnScreenOn(action KeyAction) {
	androidAction := AKeyEventActionDown
	if action == KeyActionUp {
		androidAction = AKeyEventActionUp
	}
	msg := &ControlMsg{Type: CtrlBackOrScreenOn, Action: androidAction}
	if !im.controller.PushMsg(msg) {
		log.Println("⚠️ Could not request 'press back or turn screen on'")
	}
}

func (im *InputManager) expandNotificationPanel() {
	if !im.controller.PushMsg(&ControlMsg{Type: CtrlExpandNotificationPanel}) {
		log.Println("⚠️ Could not request 'expand notification panel'")
	}
}

func (im *InputManager) expandSettingsPanel() {
	if !im.controller.PushMsg(&ControlMsg{Type: CtrlExpandSettingsPanel}) {
		log.Println("⚠️ Could not request 'expand settings panel'")
	}
}

func (im *InputManager) collapsePanels() {
	if !im.controller.PushMsg(&ControlMsg{Type: CtrlCollapsePanels}) {
		log.Println("⚠️ Could not request 'collapse panels'")
	}
}

func (im *InputManager) getDeviceClipboard(copyKey int) bool {
	msg := &ControlMsg{Type: CtrlGetClipboard, CopyKey: copyKey}
	if !im.controller.PushMsg(msg) {
		log.Println("⚠️ Could not request 'get device clipboard'")
		return false
	}
	return true
}

func (im *InputManager) setDeviceClipboard(paste bool, sequence uint64) bool {
	text := im.clipboard.Get()
	msg := &ControlMsg{
		Type:     CtrlSetClipboard,
		Sequence: sequence,
		Text:     text,
		Paste:    paste,
	}
	if !im.controller.PushMsg(msg) {
		log.Println("⚠️ Could not request 'set device clipboard'")
		return false
	}
	return true
}

func (im *InputManager) setScreenPowerMode(mode int) {
	msg := &ControlMsg{Type: CtrlSetScreenPowerMode, PowerMode: mode}
	if !im.controller.PushMsg(msg) {
		log.Println("⚠️ Could not request 'set screen power mode'")
	}
}

func (im *InputManager) switchFpsCounterState() {
	fps := &im.screen.FpsCounter
	// the started state can only be written from the input goroutine, so
	// there is no ToCToU issue
	if fps.IsStarted() {
		fps.Stop()
	} else {
		fps.Start()
	}
}

func (im *InputManager) clipboardPaste() {
	text := im.clipboard.Get()
	if text == "" {
		return
	}
	msg := &ControlMsg{Type: CtrlInjectText, Text: text}
	if !im.controller.PushMsg(msg) {
		log.Println("⚠️ Could not request 'paste clipboard'")
	}
}

func (im *InputManager) rotateDevice() {
	if !im.controller.PushMsg(&ControlMsg{Type: CtrlRotateDevice}) {
		log.Println("⚠️ Could not request device rotation")
	}
}

func (im *InputManager) openHardKeyboardSettings() {
	if !im.controller.PushMsg(&ControlMsg{Type: CtrlOpenHardKeyboardSettings}) {
		log.Println("⚠️ Could not request opening hard keyboard settings")
	}
}

func (im *InputManager) applyOrientationTransform(transform Orientation) {
	im.screen.SetOrientation(im.screen.Orientation().Apply(transform))
}

func (im *InputManager) processTextInput(ev *models.InputEvent) {
	if im.kp.ProcessText == nil {
		// the key processor does not support text input
		return
	}
	if im.isShortcutMod(im.modState) {
		// a shortcut must never generate text events
		return
	}
	im.kp.ProcessText(ev.Text)
}

func (im *InputManager) simulateVirtualTouch(touchID uint64, action int, point Point) bool {
	pressure := float32(1.0)
	if action == AMotionEventActionUp {
		pressure = 0
	}
	msg := &ControlMsg{
		Type:      CtrlInjectTouchEvent,
		Action:    action,
		Position:  Position{ScreenSize: im.screen.FrameSize, Point: point},
		PointerID: touchID,
		Pressure:  pressure,
	}
	if !im.controller.PushMsg(msg) {
		log.Println("⚠️ Could not request 'inject virtual finger event'")
		return false
	}
	return true
}

func (im *InputManager) simulateVirtualFinger(action int, point Point) bool {
	pointerID := PointerIDVirtualFinger
	if im.hasSecondaryClick {
		pointerID = PointerIDVirtualMouse
	}
	return im.simulateVirtualTouch(pointerID, action, point)
}

func inversePoint(point Point, size Size, invertX, invertY bool) Point {
	if invertX {
		point.X = size.W - point.X
	}
	if invertY {
		point.Y = size.H - point.Y
	}
	return point
}

func (im *InputManager) processKey(ev *models.InputEvent) {
	// controller is nil in no-control mode
	control := im.controller != nil
	paused := im.screen.Paused()
	video := im.screen.Video()

	keycode := ev.Keycode
	mod := ev.Mod
	down := ev.Action == models.ActionDown
	ctrl := mod&KmodCtrl != 0
	shift := mod&KmodShift != 0
	repeat := ev.Repeat

	im.modState = mod

	// Either the modifier includes a shortcut modifier, or the pressed key
	// is itself a modifier key (its mod field is 0 on release).
	isShortcut := im.isShortcutMod(mod) || im.isShortcutKey(keycode)

	if down && !repeat {
		if keycode == im.lastKeycode && mod == im.lastMod {
			im.keyRepeat++
		} else {
			im.keyRepeat = 0
			im.lastKeycode = keycode
			im.lastMod = mod
		}
	}

	if isShortcut {
		action := KeyActionDown
		if !down {
			action = KeyActionUp
		}
		switch keycode {
		case KeycodeH:
			if im.kp != nil && !shift && !repeat && !paused {
				im.actionHome(action)
			}
		case KeycodeB, KeycodeBackspace:
			if im.kp != nil && !shift && !repeat && !paused {
				im.actionBack(action)
			}
		case KeycodeS:
			if im.kp != nil && !shift && !repeat && !paused {
				im.actionAppSwitch(action)
			}
		case KeycodeM:
			if im.kp != nil && !shift && !repeat && !paused {
				im.actionMenu(action)
			}
		case KeycodeP:
			if im.kp != nil && !shift && !repeat && !paused {
				im.actionPower(action)
			}
		case KeycodeO:
			if control && !repeat && down && !paused {
				mode := ScreenPowerModeOff
				if shift {
					mode = ScreenPowerModeNormal
				}
				im.setScreenPowerMode(mode)
			}
		case KeycodeZ:
			if video && down && !repeat {
				if shift {
					im.screen.SetPaused(true, false)
				} else {
					im.screen.TogglePause()
				}
			}
		case KeycodeDown:
			if shift {
				if video && !repeat && down {
					im.applyOrientationTransform(OrientationFlip180)
				}
			} else if im.kp != nil && !paused {
				// forward repeated events
				im.actionVolumeDown(action)
			}
		case KeycodeUp:
			if shift {
				if video && !repeat && down {
					im.applyOrientationTransform(OrientationFlip180)
				}
			} else if im.kp != nil && !paused {
				// forward repeated events
				im.actionVolumeUp(action)
			}
		case KeycodeLeft:
			if video && !repeat && down {
				if shift {
					im.applyOrientationTransform(OrientationFlip0)
				} else {
					im.applyOrientationTransform(Orientation270)
				}
			}
		case KeycodeRight:
			if video && !repeat && down {
				if shift {
					im.applyOrientationTransform(OrientationFlip0)
				} else {
					im.applyOrientationTransform(Orientation90)
				}
			}
		case KeycodeC:
			if im.kp != nil && !shift && !repeat && down && !paused {
				im.getDeviceClipboard(CopyKeyCopy)
			}
		case KeycodeX:
			if im.kp != nil && !shift && !repeat && down && !paused {
				im.getDeviceClipboard(CopyKeyCut)
			}
		case KeycodeV:
			if im.kp != nil && !repeat && down && !paused {
				if shift || im.legacyPaste {
					// inject the text as input events
					im.clipboardPaste()
				} else {
					// store the text in the device clipboard and paste,
					// without requesting an acknowledgment
					im.setDeviceClipboard(true, SequenceInvalid)
				}
			}
		case KeycodeF:
			if video && !shift && !repeat && down {
				im.screen.SwitchFullscreen()
			}
		case KeycodeW:
			if video && !shift && !repeat && down {
				im.screen.ResizeToFit()
			}
		case KeycodeG:
			if video && !shift && !repeat && down {
				im.screen.ResizeToPixelPerfect()
			}
		case KeycodeI:
			if video && !shift && !repeat && down {
				im.switchFpsCounterState()
			}
		case KeycodeN:
			if control && !repeat && down && !paused {
				if shift {
					im.collapsePanels()
				} else if im.keyRepeat == 0 {
					im.expandNotificationPanel()
				} else {
					im.expandSettingsPanel()
				}
			}
		case KeycodeR:
			if control && !shift && !repeat && down && !paused {
				im.rotateDevice()
			}
		case KeycodeK:
			if control && !shift && !repeat && down && !paused &&
				im.kp != nil && im.kp.HID {
				// only if the current keyboard is HID
				im.openHardKeyboardSettings()
			}
		case KeycodeT:
			if control && !repeat && down && !paused && im.kp != nil {
				if shift {
					im.TurnOffTouchmap()
				} else if im.touchmapFile != "" {
					im.LoadTouchmap(im.touchmapFile)
				} else {
					log.Println("⚠️ No touchmap file configured")
				}
			}
		}
		// a shortcut always swallows the key
		return
	}

	if im.kp == nil || paused {
		return
	}

	ackToWait := SequenceInvalid
	isCtrlV := ctrl && !shift && keycode == KeycodeV && down && !repeat
	if im.clipboardAutosync && isCtrlV {
		if im.legacyPaste {
			// inject the text as input events
			im.clipboardPaste()
			return
		}

		// request an acknowledgement only if necessary
		sequence := SequenceInvalid
		if im.kp.AsyncPaste {
			sequence = im.nextSequence
		}

		// Synchronize the computer clipboard to the device clipboard before
		// sending Ctrl+v, to allow seamless copy-paste.
		if !im.setDeviceClipboard(false, sequence) {
			log.Println("⚠️ Clipboard could not be synchronized, Ctrl+v not injected")
			return
		}

		if im.kp.AsyncPaste {
			// the key processor must wait for this ack before injecting Ctrl+v
			ackToWait = sequence
			// increment only when the request succeeded
			im.nextSequence++
		}
	}

	if im.kp.ProcessKey == nil {
		return
	}

	action := KeyActionDown
	if !down {
		action = KeyActionUp
	}
	im.kp.ProcessKey(&KeyEvent{
		Action:   action,
		Keycode:  keycode,
		Scancode: ev.Scancode,
		Repeat:   repeat,
		Mod:      mod,
	}, ackToWait)
}

func (im *InputManager) getPosition(x, y int32) Position {
	if im.mp.RelativeMode {
		// no absolute position
		return Position{}
	}
	return Position{
		ScreenSize: im.screen.FrameSize,
		Point:      im.screen.ConvertWindowToFrameCoords(x, y),
	}
}

func (im *InputManager) pointerID() uint64 {
	if im.hasSecondaryClick {
		return PointerIDMouse
	}
	return PointerIDGenericFinger
}

func (im *InputManager) processMouseMotion(ev *models.InputEvent) {
	if ev.Which == models.TouchMouseID {
		// simulated from touch events, so it's a duplicate
		return
	}

	im.lastMouseX = ev.X
	im.lastMouseY = ev.Y
	im.mouseButtonsState = ev.State

	if im.mp.ProcessMouseMotion != nil {
		im.mp.ProcessMouseMotion(&MouseMotionEvent{
			Position:     im.getPosition(ev.X, ev.Y),
			PointerID:    im.pointerID(),
			XRel:         ev.XRel,
			YRel:         ev.YRel,
			ButtonsState: ev.State,
		})
	}

	// vfinger must never be used in relative mode
	if im.vfingerDown && !im.mp.RelativeMode {
		mouse := im.screen.ConvertWindowToFrameCoords(ev.X, ev.Y)
		vfinger := inversePoint(mouse, im.screen.FrameSize,
			im.vfingerInvertX, im.vfingerInvertY)
		im.simulateVirtualFinger(AMotionEventActionMove, vfinger)
	}
}

func touchActionFromEvent(action string) int {
	switch action {
	case models.ActionDown:
		return AMotionEventActionDown
	case models.ActionUp:
		return AMotionEventActionUp
	}
	return AMotionEventActionMove
}

func (im *InputManager) processTouch(ev *models.InputEvent) {
	if im.mp.ProcessTouch == nil {
		// the mouse processor does not support touch events
		return
	}

	dw, dh := im.screen.DrawableSize()

	// touch event coordinates are normalized in the range [0;1]
	x := int32(ev.FX * float32(dw))
	y := int32(ev.FY * float32(dh))

	im.mp.ProcessTouch(&TouchEvent{
		Position: Position{
			ScreenSize: im.screen.FrameSize,
			Point:      im.screen.ConvertDrawableToFrameCoords(x, y),
		},
		Action:    touchActionFromEvent(ev.Action),
		PointerID: ev.FingerID,
		Pressure:  ev.Pressure,
	})
}

func (im *InputManager) getBinding(button uint8) MouseBinding {
	switch button {
	case MouseButtonLeft:
		return BindingClick
	case MouseButtonRight:
		return im.mouseBindings.RightClick
	case MouseButtonMiddle:
		return im.mouseBindings.MiddleClick
	case MouseButtonX1:
		return im.mouseBindings.Click4
	case MouseButtonX2:
		return im.mouseBindings.Click5
	}
	return BindingDisabled
}

func (im *InputManager) processMouseButton(ev *models.InputEvent) {
	if ev.Which == models.TouchMouseID {
		// simulated from touch events, so it's a duplicate
		return
	}

	control := im.controller != nil
	paused := im.screen.Paused()
	down := ev.Action == models.ActionDown

	if down {
		im.mouseButtonsState |= 1 << (ev.Button - 1)
	} else {
		im.mouseButtonsState &^= 1 << (ev.Button - 1)
	}

	action := KeyActionDown
	if !down {
		action = KeyActionUp
	}

	if control && !paused {
		binding := im.getBinding(ev.Button)
		switch binding {
		case BindingDisabled:
			// ignore click
			return
		case BindingBack:
			if im.kp != nil {
				im.pressBackOrTurnScreenOn(action)
			}
			return
		case BindingHome:
			if im.kp != nil {
				im.actionHome(action)
			}
			return
		case BindingAppSwitch:
			if im.kp != nil {
				im.actionAppSwitch(action)
			}
			return
		case BindingExpandNotificationPanel:
			if down {
				if ev.Clicks < 2 {
					im.expandNotificationPanel()
				} else {
					im.expandSettingsPanel()
				}
			}
			return
		}
		// BindingClick falls through to mouse processing
	}

	// double-click on black borders resizes to fit the device screen
	video := im.screen.Video()
	mouseRelativeMode := im.mp != nil && im.mp.RelativeMode
	if video && !mouseRelativeMode && ev.Button == MouseButtonLeft &&
		ev.Clicks == 2 {
		x, y := im.screen.HidpiScaleCoords(ev.X, ev.Y)
		r := im.screen.Rect()
		outside := x < r.X || x >= r.X+r.W || y < r.Y || y >= r.Y+r.H
		if outside {
			if down {
				im.screen.ResizeToFit()
			}
			return
		}
	}

	if im.mp == nil || paused {
		return
	}

	if im.mp.ProcessMouseClick != nil {
		im.mp.ProcessMouseClick(&MouseClickEvent{
			Position:     im.getPosition(ev.X, ev.Y),
			Action:       action,
			Button:       ev.Button,
			PointerID:    im.pointerID(),
			ButtonsState: im.mouseButtonsState,
		})
	}

	if im.mp.RelativeMode {
		// no pinch-to-zoom simulation in relative mode
		return
	}

	// Pinch-to-zoom, rotate and tilt simulation.
	//
	// If Ctrl is held when the left-click button is pressed, then
	// pinch-to-zoom mode is enabled: on every mouse event until the
	// left-click button is released, an additional "virtual finger" event
	// is generated, having a position inverted through the center of the
	// screen.
	//
	// To simulate a tilt gesture (a vertical slide with two fingers),
	// Shift can be used instead of Ctrl: the virtual finger is inverted
	// only horizontally.
	ctrlPressed := im.modState&KmodCtrl != 0
	shiftPressed := im.modState&KmodShift != 0
	if ev.Button == MouseButtonLeft &&
		((down && !im.vfingerDown &&
			((ctrlPressed && !shiftPressed) ||
				(!ctrlPressed && shiftPressed))) ||
			(!down && im.vfingerDown)) {
		mouse := im.screen.ConvertWindowToFrameCoords(ev.X, ev.Y)
		if down {
			im.vfingerInvertX = ctrlPressed || shiftPressed
			im.vfingerInvertY = ctrlPressed
		}
		vfinger := inversePoint(mouse, im.screen.FrameSize,
			im.vfingerInvertX, im.vfingerInvertY)
		vfingerAction := AMotionEventActionDown
		if !down {
			vfingerAction = AMotionEventActionUp
		}
		if !im.simulateVirtualFinger(vfingerAction, vfinger) {
			return
		}
		im.vfingerDown = down
	}
}

func (im *InputManager) processMouseWheel(ev *models.InputEvent) {
	if im.mp.ProcessMouseScroll == nil {
		// the mouse processor does not support scroll events
		return
	}

	im.mp.ProcessMouseScroll(&MouseScrollEvent{
		Position:     im.getPosition(im.lastMouseX, im.lastMouseY),
		HScroll:      clampFloat(ev.HScrl, -1.0, 1.0),
		VScroll:      clampFloat(ev.VScrl, -1.0, 1.0),
		ButtonsState: im.mouseButtonsState,
	})
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isAPK(file string) bool {
	return strings.HasSuffix(strings.ToLower(file), ".apk")
}

func (im *InputManager) processDropFile(ev *models.InputEvent) {
	if im.fp == nil {
		return
	}
	action := FilePusherActionPushFile
	if isAPK(ev.Path) {
		action = FilePusherActionInstallAPK
	}
	if !im.fp.Request(action, ev.Path) {
		log.Printf("⚠️ File pusher queue full, dropped %s", ev.Path)
	}
}

func (im *InputManager) forwardControllerAxis(ev *models.InputEvent) {
	im.controller.PushMsg(&ControlMsg{
		Type:      CtrlInjectGameControllerAxis,
		ID:        int32(ev.Which),
		Axis:      ev.Axis,
		AxisValue: ev.Value,
	})
}

func (im *InputManager) forwardControllerButton(ev *models.InputEvent) {
	im.controller.PushMsg(&ControlMsg{
		Type:        CtrlInjectGameControllerBtn,
		ID:          int32(ev.Which),
		Button:      ev.Button,
		ButtonState: uint8(ev.State),
	})
}

func (im *InputManager) findFreeGameControllerSlot() int {
	for i := range im.gameControllers {
		if im.gameControllers[i] == nil {
			return i
		}
	}
	return -1
}

func (im *InputManager) freeGameControllerSlot(instanceID uint32) bool {
	for i := range im.gameControllers {
		if im.gameControllers[i] != nil &&
			im.gameControllers[i].InstanceID == instanceID {
			im.gameControllers[i] = nil
			return true
		}
	}
	return false
}

func (im *InputManager) processControllerDevice(ev *models.InputEvent) {
	var deviceEvent uint8
	switch ev.Event {
	case models.GamepadAdded:
		slot := im.findFreeGameControllerSlot()
		if slot < 0 {
			log.Println("⚠️ Controller limit reached.")
			return
		}
		im.gameControllers[slot] = &GameController{InstanceID: ev.Which}
		deviceEvent = 0
	case models.GamepadRemoved:
		if !im.freeGameControllerSlot(ev.Which) {
			log.Println("⚠️ Could not find removed game controller.")
			return
		}
		deviceEvent = 1
	default:
		return
	}

	im.controller.PushMsg(&ControlMsg{
		Type:        CtrlInjectGameControllerDev,
		ID:          int32(ev.Which),
		DeviceEvent: deviceEvent,
	})
}

// handleTouchmapButton transitions a touch button on a digital button (or
// thresholded trigger) event
func (im *InputManager) handleTouchmapButton(button uint8, state int64) {
	btn := im.gameTouchmap.FindButton(button)
	if btn == nil {
		log.Printf("❌ Button %d not found in touch map", button)
		return
	}
	if state != 0 {
		if !btn.TouchDown {
			btn.TouchDown = true
			im.simulateVirtualTouch(btn.FingerID, AMotionEventActionDown, btn.Center)
		}
	} else {
		if btn.TouchDown {
			btn.TouchDown = false
			im.simulateVirtualTouch(btn.FingerID, AMotionEventActionUp, btn.Center)
		}
	}
}

// handleTouchmapWalk drives the virtual joystick finger from a left-stick
// axis update
func (im *InputManager) handleTouchmapWalk(isXAxis bool, value int64) {
	walk := &im.gameTouchmap.Walk

	if isXAxis {
		walk.CurrentPos.X = walk.Center.X + int32(value*int64(walk.Radius)/MaxSint16)
	} else {
		walk.CurrentPos.Y = walk.Center.Y + int32(value*int64(walk.Radius)/MaxSint16)
	}

	wctlX := int64(walk.CurrentPos.X - walk.Center.X)
	wctlY := int64(walk.CurrentPos.Y - walk.Center.Y)

	distance := wctlX*wctlX + wctlY*wctlY
	if distance < walkControlDeadzone {
		if walk.TouchDown {
			walk.TouchDown = false
			im.simulateVirtualTouch(walk.FingerID, AMotionEventActionUp, walk.Center)
		}
	} else {
		if !walk.TouchDown {
			walk.TouchDown = true
			im.simulateVirtualTouch(walk.FingerID, AMotionEventActionDown, walk.Center)
		}
		im.simulateVirtualTouch(walk.FingerID, AMotionEventActionMove, walk.CurrentPos)
	}
}

func (im *InputManager) handleSkillButtonDirection(btn *TouchButton, isXAxis bool, value int64) {
	if isXAxis {
		btn.CurrentPos.X = btn.Center.X + int32(value*int64(btn.Radius)/MaxSint16)
	} else {
		btn.CurrentPos.Y = btn.Center.Y + int32(value*int64(btn.Radius)/MaxSint16)
	}
	im.simulateVirtualTouch(btn.FingerID, AMotionEventActionMove, btn.CurrentPos)
}

// handleTouchmapSkillCast aims every held skill button from a right-stick
// axis update
func (im *InputManager) handleTouchmapSkillCast(isXAxis bool, value int64) {
	for i := range im.gameTouchmap.Buttons {
		btn := &im.gameTouchmap.Buttons[i]
		if btn.IsSkill && btn.TouchDown {
			im.handleSkillButtonDirection(btn, isXAxis, value)
		}
	}
}

func (im *InputManager) processControllerAxis(ev *models.InputEvent) {
	if im.forwardGameControllers {
		im.forwardControllerAxis(ev)
		return
	}
	if im.gameTouchmap == nil {
		return
	}

	value := int64(ev.Value)
	switch ev.Axis {
	case GamepadAxisLeftX, GamepadAxisLeftY:
		im.handleTouchmapWalk(ev.Axis == GamepadAxisLeftX, value)
	case GamepadAxisRightX, GamepadAxisRightY:
		im.handleTouchmapSkillCast(ev.Axis == GamepadAxisRightX, value)
	case GamepadAxisTriggerLeft, GamepadAxisTriggerRight:
		// threshold: nonzero once the trigger is pressed >= 20%
		im.handleTouchmapButton(GamepadButtonMax+ev.Axis, value*5/MaxSint16)
	}
}

func (im *InputManager) processControllerButton(ev *models.InputEvent) {
	if im.forwardGameControllers {
		im.forwardControllerButton(ev)
		return
	}
	if im.gameTouchmap != nil {
		im.handleTouchmapButton(ev.Button, int64(ev.State))
	}
}

// HandleEvent dispatches one host event. Total over the event taxonomy;
// never blocks; unknown event types are ignored.
func (im *InputManager) HandleEvent(ev *models.InputEvent) {
	control := im.controller != nil
	paused := im.screen.Paused()

	switch ev.Type {
	case models.EventText:
		if im.kp == nil || paused {
			return
		}
		im.processTextInput(ev)

	case models.EventKey:
		// some key events do not interact with the device, so process the
		// event even if control is disabled
		im.processKey(ev)

	case models.EventMouseMotion:
		if im.mp == nil || paused {
			return
		}
		im.processMouseMotion(ev)

	case models.EventMouseWheel:
		if im.mp == nil || paused {
			return
		}
		im.processMouseWheel(ev)

	case models.EventMouseButton:
		// some mouse events do not interact with the device, so process
		// the event even if control is disabled
		im.processMouseButton(ev)

	case models.EventTouchFinger:
		if im.mp == nil || paused {
			return
		}
		im.processTouch(ev)

	case models.EventDropFile:
		if !control {
			return
		}
		im.processDropFile(ev)

	case models.EventGamepadAxis:
		if !control {
			return
		}
		im.processControllerAxis(ev)

	case models.EventGamepadButton:
		if !control {
			return
		}
		im.processControllerButton(ev)

	case models.EventGamepadDevice:
		if !control {
			return
		}
		im.processControllerDevice(ev)

	case models.EventClipboardSync:
		im.clipboard.Set(ev.Text)

	case models.EventViewportUpdate:
		im.screen.UpdateViewport(ev.WindowW, ev.WindowH,
			Rect{X: ev.RectX, Y: ev.RectY, W: ev.RectW, H: ev.RectH})

	case models.EventTouchmapReload:
		if im.gameTouchmap != nil && im.touchmapFile != "" {
			im.LoadTouchmap(im.touchmapFile)
		}

	case models.EventTouchmapLoad:
		im.LoadTouchmap(ev.Path)

	case models.EventTouchmapOff:
		im.TurnOffTouchmap()
	}
}
