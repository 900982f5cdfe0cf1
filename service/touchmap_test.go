package service

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleTouchmap = `{
  "mappings": {
    "walk_control": { "center": {"x": 100, "y": 200}, "radius": 50 },
    "button_mappings": [
      { "touch": {"x": 50, "y": 50}, "button": "A" },
      { "touch": {"x": 60, "y": 50}, "button": "RT" },
      { "touch": {"x": 70, "y": 50}, "button": "START" }
    ],
    "skill_casting": [
      { "center": {"x": 300, "y": 400}, "radius": 80, "button": "RB" }
    ]
  }
}`

func TestParseTouchmap(t *testing.T) {
	tm, err := ParseTouchmap([]byte(sampleTouchmap))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if tm.Walk.Center != (Point{X: 100, Y: 200}) {
		t.Errorf("Walk center = %+v, want (100,200)", tm.Walk.Center)
	}
	if tm.Walk.Radius != 50 {
		t.Errorf("Walk radius = %d, want 50", tm.Walk.Radius)
	}
	if tm.Walk.FingerID != BaseFingerID {
		t.Errorf("Walk finger ID = %d, want %d", tm.Walk.FingerID, BaseFingerID)
	}

	if len(tm.Buttons) != 4 {
		t.Fatalf("Button count = %d, want 4", len(tm.Buttons))
	}

	// sorted ascending by button code
	for i := 1; i < len(tm.Buttons); i++ {
		if tm.Buttons[i-1].Button > tm.Buttons[i].Button {
			t.Errorf("Buttons not sorted at %d: %d > %d", i,
				tm.Buttons[i-1].Button, tm.Buttons[i].Button)
		}
	}

	// finger IDs are unique and above the base
	seen := make(map[uint64]bool)
	seen[tm.Walk.FingerID] = true
	for _, b := range tm.Buttons {
		if b.FingerID < BaseFingerID {
			t.Errorf("Finger ID %d below base", b.FingerID)
		}
		if seen[b.FingerID] {
			t.Errorf("Duplicate finger ID %d", b.FingerID)
		}
		seen[b.FingerID] = true
	}

	a := tm.FindButton(GamepadButtonA)
	if a == nil {
		t.Fatal("Button A not found")
	}
	if a.Center != (Point{X: 50, Y: 50}) || a.IsSkill || a.Radius != 0 {
		t.Errorf("Button A = %+v", *a)
	}

	// RT is the right trigger encoded beyond the button range
	rt := tm.FindButton(GamepadButtonMax + GamepadAxisTriggerRight)
	if rt == nil {
		t.Fatal("RT trigger button not found")
	}
	if rt.Center.X != 60 {
		t.Errorf("RT center x = %d, want 60", rt.Center.X)
	}

	rb := tm.FindButton(GamepadButtonRightShoulder)
	if rb == nil {
		t.Fatal("Skill button RB not found")
	}
	if !rb.IsSkill || rb.Radius != 80 {
		t.Errorf("RB = %+v, want skill with radius 80", *rb)
	}
}

func TestParseTouchmapUnknownButton(t *testing.T) {
	data := `{"mappings": {"button_mappings": [
		{"touch": {"x": 1, "y": 2}, "button": "NOPE"}]}}`
	tm, err := ParseTouchmap([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(tm.Buttons) != 1 {
		t.Fatalf("Button count = %d, want 1", len(tm.Buttons))
	}
	if tm.Buttons[0].Button != GamepadButtonInvalid {
		t.Errorf("Unknown button mapped to %d, want %d",
			tm.Buttons[0].Button, GamepadButtonInvalid)
	}
	// invalid entries are stored but never match a real event
	if tm.FindButton(GamepadButtonA) != nil {
		t.Error("FindButton(A) matched an invalid entry")
	}
}

func TestParseTouchmapFailures(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"no mappings", `{"other": 1}`},
	}
	for _, tc := range cases {
		if _, err := ParseTouchmap([]byte(tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if _, err := ParseTouchmapFile(""); err == nil {
		t.Error("empty filename: expected error")
	}
	if _, err := ParseTouchmapFile("/nonexistent/touchmap.json"); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestParseTouchmapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchmap.json")
	if err := os.WriteFile(path, []byte(sampleTouchmap), 0644); err != nil {
		t.Fatal(err)
	}
	tm, err := ParseTouchmapFile(path)
	if err != nil {
		t.Fatalf("ParseTouchmapFile failed: %v", err)
	}
	if len(tm.Buttons) != 4 {
		t.Errorf("Button count = %d, want 4", len(tm.Buttons))
	}
}

func TestTouchmapRoundTrip(t *testing.T) {
	tm, err := ParseTouchmap([]byte(sampleTouchmap))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	data, err := tm.Emit()
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	tm2, err := ParseTouchmap(data)
	if err != nil {
		t.Fatalf("Reparse failed: %v", err)
	}

	if tm2.Walk != tm.Walk {
		t.Errorf("Walk mismatch: %+v vs %+v", tm2.Walk, tm.Walk)
	}
	if len(tm2.Buttons) != len(tm.Buttons) {
		t.Fatalf("Button count mismatch: %d vs %d", len(tm2.Buttons), len(tm.Buttons))
	}
	for i := range tm.Buttons {
		a, b := tm.Buttons[i], tm2.Buttons[i]
		if a.Center != b.Center || a.Radius != b.Radius ||
			a.Button != b.Button || a.IsSkill != b.IsSkill {
			t.Errorf("Button %d mismatch: %+v vs %+v", i, a, b)
		}
	}
}

func TestButtonNameAliases(t *testing.T) {
	cases := map[string]uint8{
		"A":        GamepadButtonA,
		"BACK":     GamepadButtonBack,
		"SELECT":   GamepadButtonBack,
		"GUIDE":    GamepadButtonGuide,
		"HOME":     GamepadButtonGuide,
		"LTHUMB":   GamepadButtonLeftStick,
		"L3":       GamepadButtonLeftStick,
		"LB":       GamepadButtonLeftShoulder,
		"L1":       GamepadButtonLeftShoulder,
		"LT":       GamepadButtonMax + GamepadAxisTriggerLeft,
		"L2":       GamepadButtonMax + GamepadAxisTriggerLeft,
		"RT":       GamepadButtonMax + GamepadAxisTriggerRight,
		"R2":       GamepadButtonMax + GamepadAxisTriggerRight,
		"TOUCHPAD": GamepadButtonTouchpad,
		"bogus":    GamepadButtonInvalid,
	}
	for name, want := range cases {
		if got := buttonValueFromName(name); got != want {
			t.Errorf("buttonValueFromName(%q) = %d, want %d", name, got, want)
		}
	}
}
