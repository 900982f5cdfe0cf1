package service

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"
)

func TestControllerPushMsgBackpressure(t *testing.T) {
	c := newTestController()
	defer c.Stop()

	for i := 0; i < controlQueueCapacity; i++ {
		if !c.PushMsg(&ControlMsg{Type: CtrlRotateDevice}) {
			t.Fatalf("push %d failed below capacity", i)
		}
	}
	// queue full: soft failure, message dropped
	if c.PushMsg(&ControlMsg{Type: CtrlRotateDevice}) {
		t.Error("push succeeded on a full queue")
	}
}

func TestControllerPushMsgAfterStop(t *testing.T) {
	c := newTestController()
	c.Stop()
	if c.PushMsg(&ControlMsg{Type: CtrlRotateDevice}) {
		t.Error("push succeeded on a stopped controller")
	}
}

func TestControllerRunWritesSerializedMessages(t *testing.T) {
	client, server := net.Pipe()
	c := NewController(client)
	defer c.Stop()
	go c.Run()

	msg := &ControlMsg{Type: CtrlGetClipboard, CopyKey: CopyKeyCut}
	if !c.PushMsg(msg) {
		t.Fatal("push failed")
	}

	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2)
	if _, err := io.ReadFull(server, buf); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if buf[0] != CtrlGetClipboard || buf[1] != CopyKeyCut {
		t.Errorf("wire bytes = %v", buf)
	}
}

func TestControllerReaderClipboardAck(t *testing.T) {
	client, server := net.Pipe()
	c := NewController(client)
	defer c.Stop()

	acks := make(chan uint64, 1)
	c.OnClipboardAck = func(sequence uint64) { acks <- sequence }
	go c.RunReader()

	frame := make([]byte, 9)
	frame[0] = DeviceMsgAckClipboard
	binary.BigEndian.PutUint64(frame[1:], 42)
	server.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := server.Write(frame); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case seq := <-acks:
		if seq != 42 {
			t.Errorf("ack sequence = %d, want 42", seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no ack received")
	}
}

func TestControllerReaderDeviceClipboard(t *testing.T) {
	client, server := net.Pipe()
	c := NewController(client)
	defer c.Stop()

	texts := make(chan string, 1)
	c.OnDeviceClipboard = func(text string) { texts <- text }
	go c.RunReader()

	payload := []byte("copied on device")
	frame := make([]byte, 5+len(payload))
	frame[0] = DeviceMsgClipboard
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[5:], payload)
	server.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := server.Write(frame); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case text := <-texts:
		if text != string(payload) {
			t.Errorf("clipboard text = %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no clipboard received")
	}
}

func TestInjectKeyProcessorAckParking(t *testing.T) {
	c := newTestController()
	defer c.Stop()
	kp := NewInjectKeyProcessor(c)

	// a Ctrl+v waiting for an ack is parked, not injected
	kp.ProcessKey(&KeyEvent{
		Action: KeyActionDown, Keycode: KeycodeV, Mod: KmodLCtrl,
	}, 5)
	if msgs := drainMsgs(c); len(msgs) != 0 {
		t.Fatalf("parked key injected %d messages", len(msgs))
	}

	// a mismatched ack does nothing
	c.OnClipboardAck(4)
	if msgs := drainMsgs(c); len(msgs) != 0 {
		t.Fatal("mismatched ack released the key")
	}

	// the matching ack releases the injection
	c.OnClipboardAck(5)
	msgs := drainMsgs(c)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages after ack, want 1", len(msgs))
	}
	if msgs[0].Type != CtrlInjectKeycode || msgs[0].MetaState&AMetaCtrlOn == 0 {
		t.Errorf("released injection = %+v", msgs[0])
	}

	// a second identical ack is a no-op
	c.OnClipboardAck(5)
	if msgs := drainMsgs(c); len(msgs) != 0 {
		t.Error("duplicate ack re-injected the key")
	}
}

func TestInjectMouseProcessorClick(t *testing.T) {
	c := newTestController()
	defer c.Stop()
	mp := NewInjectMouseProcessor(c)

	pos := Position{ScreenSize: Size{W: 400, H: 600}, Point: Point{X: 10, Y: 20}}
	mp.ProcessMouseClick(&MouseClickEvent{
		Position:     pos,
		Action:       KeyActionDown,
		Button:       MouseButtonLeft,
		PointerID:    PointerIDGenericFinger,
		ButtonsState: 1 << (MouseButtonLeft - 1),
	})
	mp.ProcessMouseClick(&MouseClickEvent{
		Position:  pos,
		Action:    KeyActionUp,
		Button:    MouseButtonLeft,
		PointerID: PointerIDGenericFinger,
	})

	msgs := drainMsgs(c)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	down, up := msgs[0], msgs[1]
	if down.Action != AMotionEventActionDown || down.Pressure != 1.0 ||
		down.ActionButton != AMotionEventButtonPrimary ||
		down.Buttons != AMotionEventButtonPrimary {
		t.Errorf("down = %+v", down)
	}
	if up.Action != AMotionEventActionUp || up.Pressure != 0 {
		t.Errorf("up = %+v", up)
	}
}
