package config

import "testing"

func TestDefaultInputSettings(t *testing.T) {
	s := DefaultInputSettings("device_x")
	if s.DeviceID != "device_x" {
		t.Errorf("device ID = %s", s.DeviceID)
	}
	if s.ShortcutMods != 0x14 {
		t.Errorf("shortcut mods = %#x, want lalt|lsuper", s.ShortcutMods)
	}
	if !s.ClipboardAutosync {
		t.Error("clipboard autosync off by default")
	}
	if s.ForwardGameControllers {
		t.Error("gamepads forwarded raw by default")
	}
	if s.RightClick != 2 || s.MiddleClick != 3 {
		t.Errorf("bindings = right %d, middle %d", s.RightClick, s.MiddleClick)
	}
}

func TestStoreWithoutDatabase(t *testing.T) {
	store := NewStore(nil)

	s, err := store.GetInputSettings("device_y")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if s.DeviceID != "device_y" {
		t.Errorf("device ID = %s", s.DeviceID)
	}

	if err := store.SaveInputSettings(s); err != nil {
		t.Errorf("save failed: %v", err)
	}
}
