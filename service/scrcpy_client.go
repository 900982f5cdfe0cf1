package service

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"androidmirror/adb"
)

const scrcpyServerVersion = "3.3.3"

// ScrcpyClient manages a control-only scrcpy server session for a single
// device (scrcpy 3.x protocol; video and audio are disabled, the control
// socket is the only socket).
type ScrcpyClient struct {
	adbClient   *adb.ADBClient
	deviceADBID string
	localPort   int
	scid        uint32 // Session Connection ID (31-bit) for scrcpy 3.x
	serverCmd   *exec.Cmd
	ctrlConn    net.Conn
	deviceName  string
	frameSize   Size
	mu          sync.Mutex
	running     bool
}

// NewScrcpyClient creates a new scrcpy client for the given device
func NewScrcpyClient(adbClient *adb.ADBClient, deviceADBID string) *ScrcpyClient {
	return &ScrcpyClient{
		adbClient:   adbClient,
		deviceADBID: deviceADBID,
	}
}

// Start pushes the server, sets up the tunnel and connects the control
// socket. Returns the net.Conn carrying control messages both ways.
func (c *ScrcpyClient) Start() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return c.ctrlConn, nil
	}

	// Server parses the SCID as a signed 32-bit hex int, so keep bit 31
	// clear.
	c.scid = rand.Uint32() & 0x7FFFFFFF

	log.Printf("📦 [%s] Pushing scrcpy-server...", c.deviceADBID)
	jarPath := filepath.Join(".", "assets", "scrcpy-server")
	remotePath := "/data/local/tmp/scrcpy-server.jar"
	if err := c.adbClient.PushFile(c.deviceADBID, jarPath, remotePath); err != nil {
		return nil, fmt.Errorf("failed to push scrcpy server: %w", err)
	}

	c.localPort = findFreePort()
	if c.localPort == 0 {
		return nil, fmt.Errorf("failed to find free port")
	}

	socketName := fmt.Sprintf("scrcpy_%08x", c.scid)
	log.Printf("🔌 [%s] Setting up ADB forward on port %d (socket: %s)...", c.deviceADBID, c.localPort, socketName)
	if err := c.adbClient.Forward(c.deviceADBID, c.localPort, socketName); err != nil {
		return nil, fmt.Errorf("failed to setup ADB forward: %w", err)
	}

	log.Printf("🚀 [%s] Starting scrcpy server (v%s, control only)...", c.deviceADBID, scrcpyServerVersion)
	serverArgs := []string{
		"CLASSPATH=/data/local/tmp/scrcpy-server.jar",
		"app_process",
		"/",
		"com.genymobile.scrcpy.Server",
		scrcpyServerVersion,
		fmt.Sprintf("scid=%08x", c.scid),
		"log_level=info",
		"video=false",
		"audio=false",
		"tunnel_forward=true",
		"control=true",
	}
	cmd, err := c.adbClient.ExecuteCommandBackground(c.deviceADBID, serverArgs)
	if err != nil {
		c.cleanup()
		return nil, fmt.Errorf("failed to start scrcpy server: %w", err)
	}
	c.serverCmd = cmd
	log.Printf("✅ [%s] Scrcpy server process started (PID: %d)", c.deviceADBID, cmd.Process.Pid)

	// app_process needs a moment before the socket is listening
	time.Sleep(1500 * time.Millisecond)

	log.Printf("🎮 [%s] Connecting to scrcpy control socket...", c.deviceADBID)
	conn, err := c.connectWithRetry(10, 300*time.Millisecond)
	if err != nil {
		c.cleanup()
		return nil, fmt.Errorf("failed to connect to scrcpy server: %w", err)
	}
	c.ctrlConn = conn

	if err := c.handshake(); err != nil {
		c.cleanup()
		return nil, fmt.Errorf("handshake failed: %w", err)
	}

	c.running = true
	log.Printf("🎬 [%s] Control session ready - %s @ %dx%d", c.deviceADBID, c.deviceName, c.frameSize.W, c.frameSize.H)
	return c.ctrlConn, nil
}

// handshake reads the tunnel_forward dummy byte and the device name the
// server sends on its first socket, then queries the frame size over adb
// (no video socket to learn it from).
func (c *ScrcpyClient) handshake() error {
	dummy := make([]byte, 1)
	if _, err := io.ReadFull(c.ctrlConn, dummy); err != nil {
		return fmt.Errorf("failed to read dummy byte: %w", err)
	}

	name := make([]byte, 64)
	if _, err := io.ReadFull(c.ctrlConn, name); err != nil {
		return fmt.Errorf("failed to read device name: %w", err)
	}
	c.deviceName = strings.TrimRight(string(name), "\x00")

	resolution, err := c.adbClient.GetScreenResolution(c.deviceADBID)
	if err != nil {
		return fmt.Errorf("failed to query screen resolution: %w", err)
	}
	var w, h int32
	if _, err := fmt.Sscanf(resolution, "%dx%d", &w, &h); err != nil {
		return fmt.Errorf("unexpected resolution %q: %w", resolution, err)
	}
	c.frameSize = Size{W: w, H: h}
	return nil
}

// Stop terminates the scrcpy server and cleans up resources
func (c *ScrcpyClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup()
	c.running = false
}

// cleanup releases all resources (must be called while holding the mutex)
func (c *ScrcpyClient) cleanup() {
	if c.ctrlConn != nil {
		c.ctrlConn.Close()
		c.ctrlConn = nil
	}
	if c.serverCmd != nil && c.serverCmd.Process != nil {
		log.Printf("🛑 [%s] Killing scrcpy server process...", c.deviceADBID)
		c.serverCmd.Process.Kill()
		c.serverCmd.Wait()
		c.serverCmd = nil
	}
	if c.localPort > 0 {
		if err := c.adbClient.RemoveForward(c.deviceADBID, c.localPort); err != nil {
			log.Printf("⚠️ [%s] Failed to remove forward: %v", c.deviceADBID, err)
		}
		c.localPort = 0
	}
}

func (c *ScrcpyClient) connectWithRetry(maxRetries int, delay time.Duration) (net.Conn, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", c.localPort)
	for i := 0; i < maxRetries; i++ {
		conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
		if err == nil {
			return conn, nil
		}
		log.Printf("⏳ [%s] Connection attempt %d/%d failed, retrying...", c.deviceADBID, i+1, maxRetries)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("failed to connect after %d retries", maxRetries)
}

// FrameSize returns the device frame size learned during the handshake
func (c *ScrcpyClient) FrameSize() Size {
	return c.frameSize
}

// DeviceName returns the device name sent by the server
func (c *ScrcpyClient) DeviceName() string {
	return c.deviceName
}

// IsRunning reports whether the session is active
func (c *ScrcpyClient) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// findFreePort finds an available TCP port
func findFreePort() int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}
