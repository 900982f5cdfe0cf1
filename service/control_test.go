package service

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestSerializeKeycode(t *testing.T) {
	msg := &ControlMsg{
		Type:      CtrlInjectKeycode,
		Action:    AKeyEventActionDown,
		Keycode:   AKeycodeEnter,
		Repeat:    0,
		MetaState: AMetaCtrlOn,
	}
	data := msg.Serialize()
	if len(data) != 14 {
		t.Fatalf("length = %d, want 14", len(data))
	}
	if data[0] != CtrlInjectKeycode || data[1] != AKeyEventActionDown {
		t.Errorf("header = [%d %d]", data[0], data[1])
	}
	if got := binary.BigEndian.Uint32(data[2:6]); got != AKeycodeEnter {
		t.Errorf("keycode = %d, want %d", got, AKeycodeEnter)
	}
	if got := binary.BigEndian.Uint32(data[10:14]); got != AMetaCtrlOn {
		t.Errorf("metastate = %d, want %d", got, AMetaCtrlOn)
	}
}

func TestSerializeText(t *testing.T) {
	msg := &ControlMsg{Type: CtrlInjectText, Text: "hello"}
	data := msg.Serialize()
	if len(data) != 10 {
		t.Fatalf("length = %d, want 10", len(data))
	}
	if got := binary.BigEndian.Uint32(data[1:5]); got != 5 {
		t.Errorf("text length = %d, want 5", got)
	}
	if !bytes.Equal(data[5:], []byte("hello")) {
		t.Errorf("text = %q", data[5:])
	}
}

func TestSerializeTextTruncated(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	msg := &ControlMsg{Type: CtrlInjectText, Text: string(long)}
	data := msg.Serialize()
	if len(data) != 5+injectTextMaxLength {
		t.Errorf("length = %d, want %d", len(data), 5+injectTextMaxLength)
	}
}

func TestSerializeTouchEvent(t *testing.T) {
	msg := &ControlMsg{
		Type:      CtrlInjectTouchEvent,
		Action:    AMotionEventActionDown,
		Position:  Position{ScreenSize: Size{W: 1080, H: 1920}, Point: Point{X: 100, Y: 200}},
		PointerID: 100,
		Pressure:  1.0,
	}
	data := msg.Serialize()
	if len(data) != 32 {
		t.Fatalf("length = %d, want 32", len(data))
	}
	if data[1] != AMotionEventActionDown {
		t.Errorf("action = %d", data[1])
	}
	if got := binary.BigEndian.Uint64(data[2:10]); got != 100 {
		t.Errorf("pointer ID = %d, want 100", got)
	}
	if got := binary.BigEndian.Uint32(data[10:14]); got != 100 {
		t.Errorf("x = %d, want 100", got)
	}
	if got := binary.BigEndian.Uint32(data[14:18]); got != 200 {
		t.Errorf("y = %d, want 200", got)
	}
	if got := binary.BigEndian.Uint16(data[18:20]); got != 1080 {
		t.Errorf("w = %d, want 1080", got)
	}
	if got := binary.BigEndian.Uint16(data[20:22]); got != 1920 {
		t.Errorf("h = %d, want 1920", got)
	}
	// pressure 1.0 saturates the fixed point
	if got := binary.BigEndian.Uint16(data[22:24]); got != 0xFFFF {
		t.Errorf("pressure = %#x, want 0xffff", got)
	}
}

func TestSerializeSetClipboard(t *testing.T) {
	msg := &ControlMsg{
		Type:     CtrlSetClipboard,
		Sequence: 7,
		Text:     "copy",
		Paste:    true,
	}
	data := msg.Serialize()
	if len(data) != 18 {
		t.Fatalf("length = %d, want 18", len(data))
	}
	if got := binary.BigEndian.Uint64(data[1:9]); got != 7 {
		t.Errorf("sequence = %d, want 7", got)
	}
	if data[9] != 1 {
		t.Errorf("paste = %d, want 1", data[9])
	}
	if !bytes.Equal(data[14:], []byte("copy")) {
		t.Errorf("text = %q", data[14:])
	}
}

func TestSerializeSimpleMessages(t *testing.T) {
	cases := []struct {
		msgType int
		want    []byte
	}{
		{CtrlExpandNotificationPanel, []byte{CtrlExpandNotificationPanel}},
		{CtrlExpandSettingsPanel, []byte{CtrlExpandSettingsPanel}},
		{CtrlCollapsePanels, []byte{CtrlCollapsePanels}},
		{CtrlRotateDevice, []byte{CtrlRotateDevice}},
		{CtrlOpenHardKeyboardSettings, []byte{CtrlOpenHardKeyboardSettings}},
	}
	for _, tc := range cases {
		msg := &ControlMsg{Type: tc.msgType}
		if got := msg.Serialize(); !bytes.Equal(got, tc.want) {
			t.Errorf("type %d: got %v, want %v", tc.msgType, got, tc.want)
		}
	}

	back := &ControlMsg{Type: CtrlBackOrScreenOn, Action: AKeyEventActionUp}
	if got := back.Serialize(); !bytes.Equal(got, []byte{CtrlBackOrScreenOn, 1}) {
		t.Errorf("back-or-screen-on = %v", got)
	}

	power := &ControlMsg{Type: CtrlSetScreenPowerMode, PowerMode: ScreenPowerModeNormal}
	if got := power.Serialize(); !bytes.Equal(got, []byte{CtrlSetScreenPowerMode, 2}) {
		t.Errorf("set-screen-power-mode = %v", got)
	}
}

func TestSerializeGameController(t *testing.T) {
	axis := &ControlMsg{
		Type:      CtrlInjectGameControllerAxis,
		ID:        3,
		Axis:      GamepadAxisLeftX,
		AxisValue: -1000,
	}
	data := axis.Serialize()
	if len(data) != 8 {
		t.Fatalf("axis length = %d, want 8", len(data))
	}
	if got := int16(binary.BigEndian.Uint16(data[6:8])); got != -1000 {
		t.Errorf("axis value = %d, want -1000", got)
	}

	btn := &ControlMsg{
		Type:        CtrlInjectGameControllerBtn,
		ID:          3,
		Button:      GamepadButtonA,
		ButtonState: 1,
	}
	if got := btn.Serialize(); len(got) != 7 || got[6] != 1 {
		t.Errorf("button serialization = %v", got)
	}

	dev := &ControlMsg{Type: CtrlInjectGameControllerDev, ID: 3, DeviceEvent: 1}
	if got := dev.Serialize(); len(got) != 6 || got[5] != 1 {
		t.Errorf("device serialization = %v", got)
	}
}

func TestSerializeUnknownType(t *testing.T) {
	msg := &ControlMsg{Type: 99}
	if got := msg.Serialize(); got != nil {
		t.Errorf("unknown type serialized to %v", got)
	}
}
