package adb

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"androidmirror/models"
)

// ADBClient wraps ADB command execution
type ADBClient struct {
	ADBPath string
}

// NewADBClient creates a new ADB client, honoring $ADB_PATH
func NewADBClient() *ADBClient {
	return &ADBClient{
		ADBPath: getEnv("ADB_PATH", "adb"),
	}
}

// ListDevices returns the connected Android devices. If the same physical
// device is connected via both USB and WiFi, the WiFi entry wins.
func (c *ADBClient) ListDevices() ([]models.Device, error) {
	cmd := exec.Command(c.ADBPath, "devices", "-l")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := c.parseDeviceList(string(output))
	return c.deduplicateDevices(devices), nil
}

func (c *ADBClient) parseDeviceList(output string) []models.Device {
	var devices []models.Device

	for i, line := range strings.Split(output, "\n") {
		// skip the header and blanks
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		// format: <serial> <state> [key:value ...]
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		serial, state := parts[0], parts[1]
		if state != "device" {
			log.Printf("⚠️ Skipping device %s (state %s)", serial, state)
			continue
		}

		device := models.Device{
			ID:          fmt.Sprintf("device_%s", serial),
			ADBDeviceID: serial,
			Name:        serial,
			Status:      "online",
		}
		for _, part := range parts[2:] {
			if strings.HasPrefix(part, "model:") {
				device.Name = strings.ReplaceAll(strings.TrimPrefix(part, "model:"), "_", " ")
			}
		}

		c.enrichDeviceInfo(&device)
		devices = append(devices, device)
	}

	return devices
}

func isWiFiConnection(adbDeviceID string) bool {
	return strings.Contains(adbDeviceID, ":")
}

func (c *ADBClient) deduplicateDevices(devices []models.Device) []models.Device {
	bySerial := make(map[string]models.Device)
	order := make([]string, 0, len(devices))

	for i := range devices {
		hwSerial := c.getSerialNumber(devices[i].ADBDeviceID)
		if hwSerial == "" {
			hwSerial = devices[i].ADBDeviceID
		}
		devices[i].HardwareSerial = hwSerial

		existing, seen := bySerial[hwSerial]
		if !seen {
			bySerial[hwSerial] = devices[i]
			order = append(order, hwSerial)
			continue
		}
		if isWiFiConnection(devices[i].ADBDeviceID) && !isWiFiConnection(existing.ADBDeviceID) {
			bySerial[hwSerial] = devices[i]
		}
	}

	result := make([]models.Device, 0, len(bySerial))
	for _, serial := range order {
		result = append(result, bySerial[serial])
	}
	if len(result) != len(devices) {
		log.Printf("📊 Dedup: %d devices (from %d raw)", len(result), len(devices))
	}
	return result
}

func (c *ADBClient) getSerialNumber(adbDeviceID string) string {
	out, err := c.getProperty(adbDeviceID, "ro.serialno")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func (c *ADBClient) enrichDeviceInfo(device *models.Device) {
	if version, err := c.getProperty(device.ADBDeviceID, "ro.build.version.release"); err == nil {
		device.AndroidVersion = strings.TrimSpace(version)
	}
	if resolution, err := c.GetScreenResolution(device.ADBDeviceID); err == nil {
		device.Resolution = resolution
	}
	if battery, err := c.getBatteryLevel(device.ADBDeviceID); err == nil {
		device.Battery = battery
	}
}

func (c *ADBClient) getProperty(deviceID, property string) (string, error) {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "shell", "getprop", property)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// GetScreenResolution reports the displayed resolution as "WxH".
// "Override size" takes precedence over "Physical size" when set.
func (c *ADBClient) GetScreenResolution(deviceID string) (string, error) {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "shell", "wm", "size")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	var physical, override string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "Physical size:"); ok {
			physical = strings.TrimSpace(value)
		}
		if value, ok := strings.CutPrefix(line, "Override size:"); ok {
			override = strings.TrimSpace(value)
		}
	}

	if override != "" {
		return override, nil
	}
	if physical != "" {
		return physical, nil
	}
	return "unknown", nil
}

func (c *ADBClient) getBatteryLevel(deviceID string) (int, error) {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "shell", "dumpsys", "battery")
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}

	for _, line := range strings.Split(string(output), "\n") {
		if value, ok := strings.CutPrefix(strings.TrimSpace(line), "level:"); ok {
			var level int
			fmt.Sscanf(strings.TrimSpace(value), "%d", &level)
			return level, nil
		}
	}
	return 0, fmt.Errorf("battery level not found")
}

// InstallAPK installs an APK on the device
func (c *ADBClient) InstallAPK(deviceID, apkPath string) error {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "install", "-r", apkPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("apk install failed: %w", err)
	}
	return nil
}

// PushFile pushes a file to the device
func (c *ADBClient) PushFile(deviceID, localPath, remotePath string) error {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "push", localPath, remotePath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("file push failed: %w", err)
	}
	return nil
}

// Forward maps a local TCP port to a device abstract socket.
// Example: adb -s <deviceID> forward tcp:27183 localabstract:scrcpy_1234abcd
func (c *ADBClient) Forward(deviceID string, localPort int, remoteSocket string) error {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "forward",
		fmt.Sprintf("tcp:%d", localPort),
		fmt.Sprintf("localabstract:%s", remoteSocket))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("adb forward failed: %w", err)
	}
	return nil
}

// RemoveForward removes the forward for the given local port
func (c *ADBClient) RemoveForward(deviceID string, localPort int) error {
	cmd := exec.Command(c.ADBPath, "-s", deviceID, "forward", "--remove",
		fmt.Sprintf("tcp:%d", localPort))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("adb forward remove failed: %w", err)
	}
	return nil
}

// ExecuteCommandBackground starts a non-blocking shell command on the
// device. The caller owns process cleanup.
func (c *ADBClient) ExecuteCommandBackground(deviceID string, args []string) (*exec.Cmd, error) {
	fullArgs := append([]string{"-s", deviceID, "shell"}, args...)
	cmd := exec.Command(c.ADBPath, fullArgs...)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start background command: %w", err)
	}
	return cmd, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
