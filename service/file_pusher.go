package service

import (
	"log"
	"path/filepath"
	"sync"

	"androidmirror/adb"
)

// File pusher actions
type FilePusherAction int

const (
	FilePusherActionPushFile FilePusherAction = iota
	FilePusherActionInstallAPK
)

const filePusherQueueCapacity = 16

const devicePushTarget = "/sdcard/Download/"

type filePusherRequest struct {
	action FilePusherAction
	path   string
}

// FilePusher executes drag-drop transfers in the background so the input
// goroutine never blocks on adb.
type FilePusher struct {
	adbClient   *adb.ADBClient
	deviceADBID string
	requests    chan filePusherRequest

	closeOnce sync.Once
	done      chan struct{}
}

func NewFilePusher(adbClient *adb.ADBClient, deviceADBID string) *FilePusher {
	return &FilePusher{
		adbClient:   adbClient,
		deviceADBID: deviceADBID,
		requests:    make(chan filePusherRequest, filePusherQueueCapacity),
		done:        make(chan struct{}),
	}
}

// Request enqueues a transfer. Non-blocking; returns false when the queue
// is full.
func (fp *FilePusher) Request(action FilePusherAction, path string) bool {
	select {
	case fp.requests <- filePusherRequest{action: action, path: path}:
		return true
	default:
		return false
	}
}

// Run processes transfer requests until stopped
func (fp *FilePusher) Run() {
	for {
		select {
		case req := <-fp.requests:
			fp.execute(req)
		case <-fp.done:
			return
		}
	}
}

func (fp *FilePusher) execute(req filePusherRequest) {
	switch req.action {
	case FilePusherActionInstallAPK:
		log.Printf("📦 [%s] Installing %s...", fp.deviceADBID, req.path)
		if err := fp.adbClient.InstallAPK(fp.deviceADBID, req.path); err != nil {
			log.Printf("❌ [%s] Failed to install %s: %v", fp.deviceADBID, req.path, err)
			return
		}
		log.Printf("✅ [%s] %s successfully installed", fp.deviceADBID, req.path)
	case FilePusherActionPushFile:
		target := devicePushTarget + filepath.Base(req.path)
		log.Printf("📦 [%s] Pushing %s...", fp.deviceADBID, req.path)
		if err := fp.adbClient.PushFile(fp.deviceADBID, req.path, target); err != nil {
			log.Printf("❌ [%s] Failed to push %s: %v", fp.deviceADBID, req.path, err)
			return
		}
		log.Printf("✅ [%s] %s successfully pushed to %s", fp.deviceADBID, req.path, target)
	}
}

func (fp *FilePusher) Stop() {
	fp.closeOnce.Do(func() { close(fp.done) })
}
