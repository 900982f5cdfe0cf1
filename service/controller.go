package service

import (
	"encoding/binary"
	"io"
	"log"
	"net"
	"sync"
)

// Device message types (control socket, device -> client)
const (
	DeviceMsgClipboard    = 0
	DeviceMsgAckClipboard = 1
)

const controlQueueCapacity = 64

// Controller owns the outbound control-message queue for one device
// session. PushMsg is non-blocking: a full queue drops the message and
// returns false, the caller logs and continues.
type Controller struct {
	conn net.Conn
	msgs chan *ControlMsg

	// invoked from the reader goroutine
	OnClipboardAck    func(sequence uint64)
	OnDeviceClipboard func(text string)

	closeOnce sync.Once
	done      chan struct{}
}

func NewController(conn net.Conn) *Controller {
	return &Controller{
		conn: conn,
		msgs: make(chan *ControlMsg, controlQueueCapacity),
		done: make(chan struct{}),
	}
}

// PushMsg enqueues a control message. Returns false if the queue is full
// or the controller is stopped; the message is dropped either way.
func (c *Controller) PushMsg(msg *ControlMsg) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.msgs <- msg:
		return true
	default:
		return false
	}
}

// Run drains the queue, serializes each message and writes it to the
// control socket. Returns when the controller is stopped or the socket
// write fails.
func (c *Controller) Run() {
	for {
		select {
		case msg := <-c.msgs:
			data := msg.Serialize()
			if data == nil {
				log.Printf("⚠️ Unknown control message type %d, dropped", msg.Type)
				continue
			}
			if _, err := c.conn.Write(data); err != nil {
				log.Printf("❌ Control socket write failed: %v", err)
				c.Stop()
				return
			}
		case <-c.done:
			return
		}
	}
}

// RunReader consumes device messages from the control socket: clipboard
// content pushed by the device, and clipboard ACK sequences that unblock
// pending Ctrl+v injections.
func (c *Controller) RunReader() {
	for {
		msgType, err := readByte(c.conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("Control socket read failed: %v", err)
			}
			c.Stop()
			return
		}

		switch msgType {
		case DeviceMsgClipboard:
			var length uint32
			if err := binary.Read(c.conn, binary.BigEndian, &length); err != nil {
				c.Stop()
				return
			}
			text := make([]byte, length)
			if _, err := io.ReadFull(c.conn, text); err != nil {
				c.Stop()
				return
			}
			if c.OnDeviceClipboard != nil {
				c.OnDeviceClipboard(string(text))
			}

		case DeviceMsgAckClipboard:
			var sequence uint64
			if err := binary.Read(c.conn, binary.BigEndian, &sequence); err != nil {
				c.Stop()
				return
			}
			if c.OnClipboardAck != nil {
				c.OnClipboardAck(sequence)
			}

		default:
			log.Printf("⚠️ Unknown device message type %d, closing control socket", msgType)
			c.Stop()
			return
		}
	}
}

// Stop closes the controller; pending messages are discarded
func (c *Controller) Stop() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
