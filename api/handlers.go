package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"androidmirror/config"
	"androidmirror/models"
	"androidmirror/service"
)

// GetDevices returns all known devices
func GetDevices(c *gin.Context, dm *service.DeviceManager) {
	c.JSON(http.StatusOK, models.SuccessResponse(dm.GetAllDevices()))
}

// ScanDevices rescans adb and returns the refreshed list
func ScanDevices(c *gin.Context, dm *service.DeviceManager) {
	if err := dm.ScanDevices(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(dm.GetAllDevices()))
}

// StartSession starts a control session for a device
func StartSession(c *gin.Context, dm *service.DeviceManager, sm *service.SessionManager) {
	device := dm.GetDevice(c.Param("id"))
	if device == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse("device not found"))
		return
	}
	if device.Status != "online" {
		c.JSON(http.StatusConflict, models.ErrorResponse("device offline"))
		return
	}

	session, err := sm.Start(device)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
		"device_id":  session.DeviceID,
		"frame_size": session.Screen().FrameSize,
	}))
}

// StopSession stops a device's control session
func StopSession(c *gin.Context, sm *service.SessionManager) {
	sm.Stop(c.Param("id"))
	c.JSON(http.StatusOK, models.MessageResponse("session stopped"))
}

// GetInputSettings returns the persisted input settings for a device
func GetInputSettings(c *gin.Context, store *config.Store) {
	settings, err := store.GetInputSettings(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(settings))
}

// PutInputSettings persists input settings for a device. The settings
// apply on the next session start.
func PutInputSettings(c *gin.Context, store *config.Store) {
	deviceID := c.Param("id")
	settings := config.DefaultInputSettings(deviceID)
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
		return
	}
	settings.DeviceID = deviceID

	if err := store.SaveInputSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(settings))
}

type touchmapRequest struct {
	Path string `json:"path"`
}

// LoadTouchmap routes a touchmap load through the session's event loop
func LoadTouchmap(c *gin.Context, sm *service.SessionManager) {
	session := sm.Get(c.Param("id"))
	if session == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse("no active session"))
		return
	}

	var req touchmapRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("path required"))
		return
	}

	session.PostEvent(&models.InputEvent{
		Type: models.EventTouchmapLoad,
		Path: req.Path,
	})
	c.JSON(http.StatusOK, models.MessageResponse("touchmap load requested"))
}

// ClearTouchmap turns the touchmap off and restores raw forwarding
func ClearTouchmap(c *gin.Context, sm *service.SessionManager) {
	session := sm.Get(c.Param("id"))
	if session == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse("no active session"))
		return
	}

	session.PostEvent(&models.InputEvent{Type: models.EventTouchmapOff})
	c.JSON(http.StatusOK, models.MessageResponse("touchmap cleared"))
}

// GetTouchmap re-emits the session's loaded touchmap as JSON
func GetTouchmap(c *gin.Context, sm *service.SessionManager) {
	session := sm.Get(c.Param("id"))
	if session == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse("no active session"))
		return
	}

	tm := session.Touchmap()
	if tm == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse("no touchmap loaded"))
		return
	}

	data, err := tm.Emit()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
