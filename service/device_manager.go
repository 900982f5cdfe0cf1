package service

import (
	"sync"
	"time"

	"androidmirror/adb"
	"androidmirror/models"
)

// DeviceManager tracks the connected devices
type DeviceManager struct {
	devices   map[string]*models.Device
	mu        sync.RWMutex
	adbClient *adb.ADBClient
}

func NewDeviceManager(adbClient *adb.ADBClient) *DeviceManager {
	return &DeviceManager{
		devices:   make(map[string]*models.Device),
		adbClient: adbClient,
	}
}

// ScanDevices refreshes the registry from adb. Devices that disappeared
// are marked offline but kept, so their settings stay addressable.
func (m *DeviceManager) ScanDevices() error {
	found, err := m.adbClient.ListDevices()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, device := range m.devices {
		device.Status = "offline"
	}
	now := time.Now().Unix()
	for i := range found {
		device := found[i]
		device.LastSeen = now
		m.devices[device.ID] = &device
	}
	return nil
}

// GetAllDevices returns all known devices
func (m *DeviceManager) GetAllDevices() []*models.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	devices := make([]*models.Device, 0, len(m.devices))
	for _, device := range m.devices {
		devices = append(devices, device)
	}
	return devices
}

// GetDevice returns a single device by ID, nil if unknown
func (m *DeviceManager) GetDevice(id string) *models.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.devices[id]
}

// GetADBClient exposes the underlying ADB client
func (m *DeviceManager) GetADBClient() *adb.ADBClient {
	return m.adbClient
}
