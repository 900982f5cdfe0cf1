package models

type Device struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ADBDeviceID    string `json:"adb_device_id"`
	Status         string `json:"status"` // online, offline
	Resolution     string `json:"resolution"`
	Battery        int    `json:"battery"`
	AndroidVersion string `json:"android_version"`
	HardwareSerial string `json:"hardware_serial,omitempty"`
	LastSeen       int64  `json:"last_seen"`
}
