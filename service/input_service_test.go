package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"androidmirror/models"
)

func TestInputServiceDispatch(t *testing.T) {
	rig := newTestRig(t, nil)
	svc := NewInputService("device_test", rig.im)
	go svc.Run()
	defer svc.Stop()

	if !svc.Post(&models.InputEvent{Type: models.EventClipboardSync, Text: "synced"}) {
		t.Fatal("post failed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for rig.clipboard.Get() != "synced" {
		if time.Now().After(deadline) {
			t.Fatal("event not dispatched")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInputServicePostAfterStop(t *testing.T) {
	rig := newTestRig(t, nil)
	svc := NewInputService("device_test", rig.im)
	svc.Stop()
	if svc.Post(&models.InputEvent{Type: models.EventClipboardSync, Text: "x"}) {
		t.Error("post succeeded on a stopped service")
	}
}

func TestInputServiceQueueOverflow(t *testing.T) {
	rig := newTestRig(t, nil)
	svc := NewInputService("device_test", rig.im)
	// not running: the queue fills up
	defer svc.Stop()

	for i := 0; i < inputQueueCapacity; i++ {
		if !svc.Post(&models.InputEvent{Type: "bogus"}) {
			t.Fatalf("post %d failed below capacity", i)
		}
	}
	if svc.Post(&models.InputEvent{Type: "bogus"}) {
		t.Error("post succeeded on a full queue")
	}
}

func TestInputServiceTouchmapHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchmap.json")
	if err := os.WriteFile(path, []byte(testTouchmap), 0644); err != nil {
		t.Fatal(err)
	}

	rig := newTestRig(t, func(p *InputManagerParams) {
		p.TouchmapFile = path
	})
	if rig.im.Touchmap() == nil {
		t.Fatal("touchmap not loaded at init")
	}

	svc := NewInputService("device_test", rig.im)
	if err := svc.WatchTouchmap(path); err != nil {
		t.Fatalf("WatchTouchmap failed: %v", err)
	}
	go svc.Run()
	defer svc.Stop()

	// replace the map on disk with one that binds button B, then probe
	// with B presses until the reload takes effect
	grown := `{
  "mappings": {
    "walk_control": { "center": {"x": 1, "y": 2}, "radius": 3 },
    "button_mappings": [
      { "touch": {"x": 6, "y": 6}, "button": "B" }
    ]
  }
}`
	if err := os.WriteFile(path, []byte(grown), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		svc.Post(buttonEvent(GamepadButtonB, true))
		svc.Post(buttonEvent(GamepadButtonB, false))
		time.Sleep(20 * time.Millisecond)
		if msgs := drainMsgs(rig.controller); len(msgs) > 0 {
			// button B only exists in the replacement map
			if msgs[0].Position.Point != (Point{X: 6, Y: 6}) {
				t.Errorf("reloaded button center = %+v, want (6,6)", msgs[0].Position.Point)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("touchmap not hot-reloaded")
		}
	}
}
