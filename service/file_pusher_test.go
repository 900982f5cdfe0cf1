package service

import (
	"testing"

	"androidmirror/adb"
)

func TestFilePusherQueueBounds(t *testing.T) {
	fp := NewFilePusher(adb.NewADBClient(), "emulator-5554")
	defer fp.Stop()
	// worker not running: the queue fills up

	for i := 0; i < filePusherQueueCapacity; i++ {
		if !fp.Request(FilePusherActionPushFile, "/tmp/file") {
			t.Fatalf("request %d failed below capacity", i)
		}
	}
	if fp.Request(FilePusherActionPushFile, "/tmp/file") {
		t.Error("request succeeded on a full queue")
	}
}

func TestIsAPK(t *testing.T) {
	cases := map[string]bool{
		"/tmp/app.apk":   true,
		"/tmp/APP.APK":   true,
		"/tmp/photo.png": false,
		"/tmp/apk":       false,
	}
	for path, want := range cases {
		if got := isAPK(path); got != want {
			t.Errorf("isAPK(%q) = %v, want %v", path, got, want)
		}
	}
}
