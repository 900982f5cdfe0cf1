package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"androidmirror/adb"
	"androidmirror/api"
	"androidmirror/config"
	"androidmirror/service"
)

// setupLogging creates a log file in the log directory with timestamp
// Returns the log file handle (caller should defer Close())
func setupLogging() (*os.File, error) {
	logDir := "log"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// log/2026-08-06_21-52-35.log
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, timestamp+".log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Write to both console and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	log.Printf("📝 Logging to: %s", logPath)
	return logFile, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Printf("Warning: Failed to setup file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting Android Mirror Backend...")

	db, err := config.InitDatabase()
	if err != nil {
		log.Printf("Warning: Failed to open settings database: %v", err)
	}
	store := config.NewStore(db)

	adbClient := adb.NewADBClient()
	deviceManager := service.NewDeviceManager(adbClient)

	wsHub := api.NewWebSocketHub()
	go wsHub.Run()

	sessionManager := service.NewSessionManager(adbClient, store, wsHub)
	defer sessionManager.StopAll()

	router := gin.Default()
	api.SetupRoutes(router, deviceManager, sessionManager, store, wsHub)

	log.Println("Server starting on http://localhost:8080")
	log.Println("WebSocket server on ws://localhost:8080/ws")

	// Initial device scan in the background
	go func() {
		log.Println("🔍 Scanning devices...")
		if err := deviceManager.ScanDevices(); err != nil {
			log.Printf("Warning: Failed to scan devices: %v", err)
			return
		}
		log.Printf("📱 Found %d devices", len(deviceManager.GetAllDevices()))
	}()

	if err := router.Run(":8080"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
