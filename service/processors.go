package service

import (
	"log"
	"sync"
)

// Reserved pointer IDs (scrcpy convention: top of the uint64 space)
const (
	PointerIDMouse         = ^uint64(0)
	PointerIDGenericFinger = ^uint64(0) - 1
	PointerIDVirtualMouse  = ^uint64(0) - 2
	PointerIDVirtualFinger = ^uint64(0) - 3
)

// KeyAction discriminates key press and release
type KeyAction int

const (
	KeyActionDown KeyAction = iota
	KeyActionUp
)

// KeyEvent is a translated key press/release delivered to a key processor
type KeyEvent struct {
	Action   KeyAction
	Keycode  uint32
	Scancode uint32
	Repeat   bool
	Mod      uint16
}

// MouseMotionEvent is a pointer move delivered to a mouse processor
type MouseMotionEvent struct {
	Position     Position
	PointerID    uint64
	XRel, YRel   int32
	ButtonsState uint32
}

// MouseClickEvent is a button press/release delivered to a mouse processor
type MouseClickEvent struct {
	Position     Position
	Action       KeyAction
	Button       uint8
	PointerID    uint64
	ButtonsState uint32
}

// MouseScrollEvent is a wheel event delivered to a mouse processor
type MouseScrollEvent struct {
	Position     Position
	HScroll      float32
	VScroll      float32
	ButtonsState uint32
}

// TouchEvent is a real (hardware) touch delivered to a mouse processor
type TouchEvent struct {
	Position  Position
	Action    int // Android motion action
	PointerID uint64
	Pressure  float32
}

// KeyProcessor is a capability set for keyboard handling. Each callback is
// optional; a nil callback silently disables the corresponding path.
type KeyProcessor struct {
	// HID reports that the processor drives a hardware AOA/UHID keyboard
	HID bool
	// AsyncPaste requires a clipboard ACK before injecting Ctrl+v
	AsyncPaste bool

	ProcessKey  func(ev *KeyEvent, ackToWait uint64)
	ProcessText func(text string)
}

// MouseProcessor is a capability set for pointer handling
type MouseProcessor struct {
	// RelativeMode forwards only deltas; absolute positions are meaningless
	RelativeMode bool

	ProcessMouseMotion func(ev *MouseMotionEvent)
	ProcessMouseClick  func(ev *MouseClickEvent)
	ProcessMouseScroll func(ev *MouseScrollEvent)
	ProcessTouch       func(ev *TouchEvent)
}

// injectKeyProcessor translates host key events to INJECT_KEYCODE /
// INJECT_TEXT control messages. When a Ctrl+v injection must wait for a
// clipboard ACK, the event is parked until the controller reader reports
// the matching sequence.
type injectKeyProcessor struct {
	controller *Controller

	mu          sync.Mutex
	pendingSeq  uint64
	pendingDown *KeyEvent
}

// NewInjectKeyProcessor builds the default key processor backed by the
// device control socket
func NewInjectKeyProcessor(controller *Controller) *KeyProcessor {
	p := &injectKeyProcessor{controller: controller}
	controller.OnClipboardAck = p.onClipboardAck
	return &KeyProcessor{
		AsyncPaste:  true,
		ProcessKey:  p.processKey,
		ProcessText: p.processText,
	}
}

func (p *injectKeyProcessor) inject(ev *KeyEvent) {
	keycode := androidKeycodeFromHost(ev.Keycode)
	if keycode == 0 {
		// no keycode translation; the character arrives as a text event
		return
	}
	action := AKeyEventActionDown
	if ev.Action == KeyActionUp {
		action = AKeyEventActionUp
	}
	repeat := 0
	if ev.Repeat {
		repeat = 1
	}
	msg := &ControlMsg{
		Type:      CtrlInjectKeycode,
		Action:    action,
		Keycode:   keycode,
		Repeat:    repeat,
		MetaState: androidMetaStateFromHost(ev.Mod),
	}
	if !p.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject keycode %d'", keycode)
	}
}

func (p *injectKeyProcessor) processKey(ev *KeyEvent, ackToWait uint64) {
	if ackToWait != SequenceInvalid {
		// park the Ctrl+v press until the device acknowledges the
		// clipboard sequence
		p.mu.Lock()
		p.pendingSeq = ackToWait
		evCopy := *ev
		p.pendingDown = &evCopy
		p.mu.Unlock()
		return
	}
	p.inject(ev)
}

func (p *injectKeyProcessor) processText(text string) {
	msg := &ControlMsg{Type: CtrlInjectText, Text: text}
	if !p.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject text'")
	}
}

func (p *injectKeyProcessor) onClipboardAck(sequence uint64) {
	p.mu.Lock()
	ev := p.pendingDown
	match := ev != nil && p.pendingSeq == sequence
	if match {
		p.pendingDown = nil
		p.pendingSeq = SequenceInvalid
	}
	p.mu.Unlock()

	if match {
		p.inject(ev)
	}
}

// injectMouseProcessor translates pointer events to touch/scroll control
// messages (the classic scrcpy "mouse as finger" mode)
type injectMouseProcessor struct {
	controller *Controller
}

// NewInjectMouseProcessor builds the default mouse processor backed by the
// device control socket
func NewInjectMouseProcessor(controller *Controller) *MouseProcessor {
	p := &injectMouseProcessor{controller: controller}
	return &MouseProcessor{
		ProcessMouseMotion: p.processMotion,
		ProcessMouseClick:  p.processClick,
		ProcessMouseScroll: p.processScroll,
		ProcessTouch:       p.processTouch,
	}
}

func actionButtonFromHost(button uint8) uint32 {
	switch button {
	case MouseButtonLeft:
		return AMotionEventButtonPrimary
	case MouseButtonRight:
		return AMotionEventButtonSecondary
	case MouseButtonMiddle:
		return AMotionEventButtonTertiary
	}
	return 0
}

// buttonsFromHostState converts an SDL buttons-held bitmask to Android
// motion event buttons
func buttonsFromHostState(state uint32) uint32 {
	var buttons uint32
	if state&(1<<(MouseButtonLeft-1)) != 0 {
		buttons |= AMotionEventButtonPrimary
	}
	if state&(1<<(MouseButtonRight-1)) != 0 {
		buttons |= AMotionEventButtonSecondary
	}
	if state&(1<<(MouseButtonMiddle-1)) != 0 {
		buttons |= AMotionEventButtonTertiary
	}
	return buttons
}

func (p *injectMouseProcessor) processMotion(ev *MouseMotionEvent) {
	msg := &ControlMsg{
		Type:      CtrlInjectTouchEvent,
		Action:    AMotionEventActionMove,
		Position:  ev.Position,
		PointerID: ev.PointerID,
		Pressure:  1.0,
		Buttons:   buttonsFromHostState(ev.ButtonsState),
	}
	if !p.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject mouse motion'")
	}
}

func (p *injectMouseProcessor) processClick(ev *MouseClickEvent) {
	action := AMotionEventActionDown
	pressure := float32(1.0)
	if ev.Action == KeyActionUp {
		action = AMotionEventActionUp
		pressure = 0
	}
	msg := &ControlMsg{
		Type:         CtrlInjectTouchEvent,
		Action:       action,
		Position:     ev.Position,
		PointerID:    ev.PointerID,
		Pressure:     pressure,
		ActionButton: actionButtonFromHost(ev.Button),
		Buttons:      buttonsFromHostState(ev.ButtonsState),
	}
	if !p.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject mouse click'")
	}
}

func (p *injectMouseProcessor) processScroll(ev *MouseScrollEvent) {
	msg := &ControlMsg{
		Type:     CtrlInjectScrollEvent,
		Position: ev.Position,
		HScroll:  ev.HScroll,
		VScroll:  ev.VScroll,
		Buttons:  buttonsFromHostState(ev.ButtonsState),
	}
	if !p.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject mouse scroll'")
	}
}

func (p *injectMouseProcessor) processTouch(ev *TouchEvent) {
	msg := &ControlMsg{
		Type:      CtrlInjectTouchEvent,
		Action:    ev.Action,
		Position:  ev.Position,
		PointerID: ev.PointerID,
		Pressure:  ev.Pressure,
	}
	if !p.controller.PushMsg(msg) {
		log.Printf("⚠️ Could not request 'inject touch event'")
	}
}
