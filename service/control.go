package service

import (
	"encoding/binary"
	"math"
)

// Control message types (scrcpy 3.x protocol, plus the game-controller
// extension types carried by the forked server)
const (
	CtrlInjectKeycode            = 0
	CtrlInjectText               = 1
	CtrlInjectTouchEvent         = 2
	CtrlInjectScrollEvent        = 3
	CtrlBackOrScreenOn           = 4
	CtrlExpandNotificationPanel  = 5
	CtrlExpandSettingsPanel      = 6
	CtrlCollapsePanels           = 7
	CtrlGetClipboard             = 8
	CtrlSetClipboard             = 9
	CtrlSetScreenPowerMode       = 10
	CtrlRotateDevice             = 11
	CtrlOpenHardKeyboardSettings = 15
	CtrlInjectGameControllerAxis = 16
	CtrlInjectGameControllerBtn  = 17
	CtrlInjectGameControllerDev  = 18
)

// Android motion event actions
const (
	AMotionEventActionDown = 0
	AMotionEventActionUp   = 1
	AMotionEventActionMove = 2
)

// Android motion event buttons
const (
	AMotionEventButtonPrimary   = 1 << 0
	AMotionEventButtonSecondary = 1 << 1
	AMotionEventButtonTertiary  = 1 << 2
)

// Copy keys for GET_CLIPBOARD
const (
	CopyKeyNone = 0
	CopyKeyCopy = 1
	CopyKeyCut  = 2
)

// Screen power modes
const (
	ScreenPowerModeOff    = 0
	ScreenPowerModeNormal = 2
)

// SequenceInvalid is the reserved clipboard sequence sentinel
const SequenceInvalid = uint64(0)

// Max text length accepted by the server for INJECT_TEXT and SET_CLIPBOARD
const injectTextMaxLength = 300

// Point is a position in device-frame pixels
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Size is a width/height pair in pixels
type Size struct {
	W int32 `json:"w"`
	H int32 `json:"h"`
}

// Position pairs a point with the frame size it was expressed in, so the
// server can rescale if the device resolution changed in flight
type Position struct {
	ScreenSize Size
	Point      Point
}

// ControlMsg is an outbound device control message. Fields are a flattened
// union; Type selects which ones are meaningful.
type ControlMsg struct {
	Type int

	// inject keycode
	Action    int
	Keycode   int
	Repeat    int
	MetaState int

	// inject text / set clipboard
	Text string

	// inject touch / scroll
	Position     Position
	PointerID    uint64
	Pressure     float32
	ActionButton uint32
	Buttons      uint32
	HScroll      float32
	VScroll      float32

	// get/set clipboard
	CopyKey  int
	Sequence uint64
	Paste    bool

	// screen power mode
	PowerMode int

	// game controller
	ID          int32
	Axis        uint8
	AxisValue   int16
	Button      uint8
	ButtonState uint8
	DeviceEvent uint8
}

// Serialize encodes the message in the scrcpy wire format (big-endian).
// Returns nil for unknown message types.
func (m *ControlMsg) Serialize() []byte {
	switch m.Type {
	case CtrlInjectKeycode:
		// [type:1][action:1][keycode:4][repeat:4][metastate:4]
		buf := make([]byte, 14)
		buf[0] = CtrlInjectKeycode
		buf[1] = byte(m.Action)
		binary.BigEndian.PutUint32(buf[2:6], uint32(m.Keycode))
		binary.BigEndian.PutUint32(buf[6:10], uint32(m.Repeat))
		binary.BigEndian.PutUint32(buf[10:14], uint32(m.MetaState))
		return buf

	case CtrlInjectText:
		// [type:1][length:4][text:N]
		text := truncateText(m.Text)
		buf := make([]byte, 5+len(text))
		buf[0] = CtrlInjectText
		binary.BigEndian.PutUint32(buf[1:5], uint32(len(text)))
		copy(buf[5:], text)
		return buf

	case CtrlInjectTouchEvent:
		// [type:1][action:1][pointerId:8][x:4][y:4][w:2][h:2]
		// [pressure:2][action_button:4][buttons:4]
		buf := make([]byte, 32)
		buf[0] = CtrlInjectTouchEvent
		buf[1] = byte(m.Action)
		binary.BigEndian.PutUint64(buf[2:10], m.PointerID)
		writePosition(buf[10:22], m.Position)
		binary.BigEndian.PutUint16(buf[22:24], floatToU16FixedPoint(m.Pressure))
		binary.BigEndian.PutUint32(buf[24:28], m.ActionButton)
		binary.BigEndian.PutUint32(buf[28:32], m.Buttons)
		return buf

	case CtrlInjectScrollEvent:
		// [type:1][x:4][y:4][w:2][h:2][hscroll:2][vscroll:2][buttons:4]
		buf := make([]byte, 21)
		buf[0] = CtrlInjectScrollEvent
		writePosition(buf[1:13], m.Position)
		binary.BigEndian.PutUint16(buf[13:15], uint16(floatToI16FixedPoint(m.HScroll)))
		binary.BigEndian.PutUint16(buf[15:17], uint16(floatToI16FixedPoint(m.VScroll)))
		binary.BigEndian.PutUint32(buf[17:21], m.Buttons)
		return buf

	case CtrlBackOrScreenOn:
		return []byte{CtrlBackOrScreenOn, byte(m.Action)}

	case CtrlExpandNotificationPanel, CtrlExpandSettingsPanel,
		CtrlCollapsePanels, CtrlRotateDevice, CtrlOpenHardKeyboardSettings:
		return []byte{byte(m.Type)}

	case CtrlGetClipboard:
		return []byte{CtrlGetClipboard, byte(m.CopyKey)}

	case CtrlSetClipboard:
		// [type:1][sequence:8][paste:1][length:4][text:N]
		text := truncateText(m.Text)
		buf := make([]byte, 14+len(text))
		buf[0] = CtrlSetClipboard
		binary.BigEndian.PutUint64(buf[1:9], m.Sequence)
		if m.Paste {
			buf[9] = 1
		}
		binary.BigEndian.PutUint32(buf[10:14], uint32(len(text)))
		copy(buf[14:], text)
		return buf

	case CtrlSetScreenPowerMode:
		return []byte{CtrlSetScreenPowerMode, byte(m.PowerMode)}

	case CtrlInjectGameControllerAxis:
		// [type:1][id:4][axis:1][value:2]
		buf := make([]byte, 8)
		buf[0] = CtrlInjectGameControllerAxis
		binary.BigEndian.PutUint32(buf[1:5], uint32(m.ID))
		buf[5] = m.Axis
		binary.BigEndian.PutUint16(buf[6:8], uint16(m.AxisValue))
		return buf

	case CtrlInjectGameControllerBtn:
		// [type:1][id:4][button:1][state:1]
		buf := make([]byte, 7)
		buf[0] = CtrlInjectGameControllerBtn
		binary.BigEndian.PutUint32(buf[1:5], uint32(m.ID))
		buf[5] = m.Button
		buf[6] = m.ButtonState
		return buf

	case CtrlInjectGameControllerDev:
		// [type:1][id:4][event:1]
		buf := make([]byte, 6)
		buf[0] = CtrlInjectGameControllerDev
		binary.BigEndian.PutUint32(buf[1:5], uint32(m.ID))
		buf[5] = m.DeviceEvent
		return buf
	}

	return nil
}

func writePosition(buf []byte, pos Position) {
	binary.BigEndian.PutUint32(buf[0:4], uint32(pos.Point.X))
	binary.BigEndian.PutUint32(buf[4:8], uint32(pos.Point.Y))
	binary.BigEndian.PutUint16(buf[8:10], uint16(pos.ScreenSize.W))
	binary.BigEndian.PutUint16(buf[10:12], uint16(pos.ScreenSize.H))
}

func truncateText(text string) []byte {
	b := []byte(text)
	if len(b) > injectTextMaxLength {
		b = b[:injectTextMaxLength]
	}
	return b
}

// floatToU16FixedPoint converts f in [0;1] to unsigned 16-bit fixed point
func floatToU16FixedPoint(f float32) uint16 {
	if f >= 1.0 {
		return 0xFFFF
	}
	if f <= 0 {
		return 0
	}
	return uint16(f * float32(1<<16))
}

// floatToI16FixedPoint converts f in [-1;1] to signed 16-bit fixed point
func floatToI16FixedPoint(f float32) int16 {
	if f >= 1.0 {
		return math.MaxInt16
	}
	if f <= -1.0 {
		return math.MinInt16
	}
	return int16(f * float32(1<<15))
}
