package service

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Game controller buttons (SDL game controller button numbers)
const (
	GamepadButtonA             uint8 = 0
	GamepadButtonB             uint8 = 1
	GamepadButtonX             uint8 = 2
	GamepadButtonY             uint8 = 3
	GamepadButtonBack          uint8 = 4
	GamepadButtonGuide         uint8 = 5
	GamepadButtonStart         uint8 = 6
	GamepadButtonLeftStick     uint8 = 7
	GamepadButtonRightStick    uint8 = 8
	GamepadButtonLeftShoulder  uint8 = 9
	GamepadButtonRightShoulder uint8 = 10
	GamepadButtonDpadUp        uint8 = 11
	GamepadButtonDpadDown      uint8 = 12
	GamepadButtonDpadLeft      uint8 = 13
	GamepadButtonDpadRight     uint8 = 14
	GamepadButtonMisc1         uint8 = 15
	GamepadButtonPaddle1       uint8 = 16
	GamepadButtonPaddle2       uint8 = 17
	GamepadButtonPaddle3       uint8 = 18
	GamepadButtonPaddle4       uint8 = 19
	GamepadButtonTouchpad      uint8 = 20
	GamepadButtonMax           uint8 = 21
	GamepadButtonInvalid       uint8 = 255
)

// Game controller axes (SDL game controller axis numbers)
const (
	GamepadAxisLeftX        uint8 = 0
	GamepadAxisLeftY        uint8 = 1
	GamepadAxisRightX       uint8 = 2
	GamepadAxisRightY       uint8 = 3
	GamepadAxisTriggerLeft  uint8 = 4
	GamepadAxisTriggerRight uint8 = 5
)

const MaxSint16 = 32767

// BaseFingerID is the first pointer ID handed to touchmap controls. The
// walk control takes it, each button the next. Disjoint from the reserved
// virtual-pointer IDs at the top of the uint64 space.
const BaseFingerID = uint64(100)

// walkControlDeadzone is compared against the squared distance from the
// walk-control center (radius ~5 px, independent of the configured walk
// radius; configuration-worthy)
const walkControlDeadzone = 25

// buttonValueFromName maps a touchmap button name to its numeric code.
// Triggers are encoded as GamepadButtonMax + axis index so analog trigger
// events reuse the button dispatch path. Unknown names map to
// GamepadButtonInvalid: stored, never matched by a real event.
func buttonValueFromName(name string) uint8 {
	switch name {
	case "A":
		return GamepadButtonA
	case "B":
		return GamepadButtonB
	case "X":
		return GamepadButtonX
	case "Y":
		return GamepadButtonY
	case "BACK", "SELECT":
		return GamepadButtonBack
	case "GUIDE", "HOME":
		return GamepadButtonGuide
	case "START":
		return GamepadButtonStart
	case "LTHUMB", "L3":
		return GamepadButtonLeftStick
	case "RTHUMB", "R3":
		return GamepadButtonRightStick
	case "LB", "L1":
		return GamepadButtonLeftShoulder
	case "RB", "R1":
		return GamepadButtonRightShoulder
	case "UP":
		return GamepadButtonDpadUp
	case "DOWN":
		return GamepadButtonDpadDown
	case "LEFT":
		return GamepadButtonDpadLeft
	case "RIGHT":
		return GamepadButtonDpadRight
	case "MISC":
		return GamepadButtonMisc1
	case "PADDLE1":
		return GamepadButtonPaddle1
	case "PADDLE2":
		return GamepadButtonPaddle2
	case "PADDLE3":
		return GamepadButtonPaddle3
	case "PADDLE4":
		return GamepadButtonPaddle4
	case "TOUCHPAD":
		return GamepadButtonTouchpad
	case "LT", "L2":
		return GamepadButtonMax + GamepadAxisTriggerLeft
	case "RT", "R2":
		return GamepadButtonMax + GamepadAxisTriggerRight
	}
	return GamepadButtonInvalid
}

// buttonNameFromValue is the inverse mapping, used to re-emit a loaded map
func buttonNameFromValue(button uint8) string {
	names := map[uint8]string{
		GamepadButtonA:             "A",
		GamepadButtonB:             "B",
		GamepadButtonX:             "X",
		GamepadButtonY:             "Y",
		GamepadButtonBack:          "BACK",
		GamepadButtonGuide:         "GUIDE",
		GamepadButtonStart:         "START",
		GamepadButtonLeftStick:     "L3",
		GamepadButtonRightStick:    "R3",
		GamepadButtonLeftShoulder:  "LB",
		GamepadButtonRightShoulder: "RB",
		GamepadButtonDpadUp:        "UP",
		GamepadButtonDpadDown:      "DOWN",
		GamepadButtonDpadLeft:      "LEFT",
		GamepadButtonDpadRight:     "RIGHT",
		GamepadButtonMisc1:         "MISC",
		GamepadButtonPaddle1:       "PADDLE1",
		GamepadButtonPaddle2:       "PADDLE2",
		GamepadButtonPaddle3:       "PADDLE3",
		GamepadButtonPaddle4:       "PADDLE4",
		GamepadButtonTouchpad:      "TOUCHPAD",

		GamepadButtonMax + GamepadAxisTriggerLeft:  "LT",
		GamepadButtonMax + GamepadAxisTriggerRight: "RT",
	}
	if name, ok := names[button]; ok {
		return name
	}
	return "INVALID"
}

// WalkControl simulates an analog joystick as a circle on the touchscreen
type WalkControl struct {
	Center     Point
	Radius     int32
	CurrentPos Point
	TouchDown  bool
	FingerID   uint64
}

// TouchButton binds a gamepad button code to a touch position. A skill
// button additionally carries an aim radius driven by the right stick.
type TouchButton struct {
	Center     Point
	Radius     int32
	CurrentPos Point
	TouchDown  bool
	FingerID   uint64
	Button     uint8
	IsSkill    bool
}

// GamepadTouchmap maps gamepad controls to touch gestures on an on-screen
// control layout. Exclusively owned by one InputManager; replaced whole,
// never mutated piecewise except for per-control TouchDown and CurrentPos.
type GamepadTouchmap struct {
	Walk    WalkControl
	Buttons []TouchButton // sorted ascending by Button
}

// FindButton binary-searches the sorted button array
func (m *GamepadTouchmap) FindButton(button uint8) *TouchButton {
	i := sort.Search(len(m.Buttons), func(i int) bool {
		return m.Buttons[i].Button >= button
	})
	if i < len(m.Buttons) && m.Buttons[i].Button == button {
		return &m.Buttons[i]
	}
	return nil
}

// Touchmap file schema
type touchmapPoint struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type touchmapWalkControl struct {
	Center touchmapPoint `json:"center"`
	Radius int32         `json:"radius"`
}

type touchmapButton struct {
	Touch  touchmapPoint `json:"touch"`
	Button string        `json:"button"`
}

type touchmapSkill struct {
	Center touchmapPoint `json:"center"`
	Radius int32         `json:"radius"`
	Button string        `json:"button"`
}

type touchmapMappings struct {
	WalkControl    *touchmapWalkControl `json:"walk_control,omitempty"`
	ButtonMappings []touchmapButton     `json:"button_mappings,omitempty"`
	SkillCasting   []touchmapSkill      `json:"skill_casting,omitempty"`
}

type touchmapConfig struct {
	Mappings *touchmapMappings `json:"mappings"`
}

// ParseTouchmapFile loads and validates a touchmap JSON file. The map is
// built completely before being returned, so a parse failure never leaves
// a caller with a half-loaded map.
func ParseTouchmapFile(filename string) (*GamepadTouchmap, error) {
	if filename == "" {
		return nil, fmt.Errorf("no touchmap file defined")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read touchmap file: %w", err)
	}

	return ParseTouchmap(data)
}

// ParseTouchmap builds a touchmap from raw JSON
func ParseTouchmap(data []byte) (*GamepadTouchmap, error) {
	var cfg touchmapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing touchmap JSON: %w", err)
	}
	if cfg.Mappings == nil {
		return nil, fmt.Errorf("touchmap has no mappings object")
	}

	mappings := cfg.Mappings
	fingerID := BaseFingerID

	tm := &GamepadTouchmap{}
	tm.Walk.FingerID = fingerID
	fingerID++
	if mappings.WalkControl != nil {
		tm.Walk.Center = Point{X: mappings.WalkControl.Center.X, Y: mappings.WalkControl.Center.Y}
		tm.Walk.Radius = mappings.WalkControl.Radius
		// start at the center so the first single-axis update keeps the
		// other axis centered
		tm.Walk.CurrentPos = tm.Walk.Center
	}

	tm.Buttons = make([]TouchButton, 0, len(mappings.ButtonMappings)+len(mappings.SkillCasting))
	for _, b := range mappings.ButtonMappings {
		center := Point{X: b.Touch.X, Y: b.Touch.Y}
		tm.Buttons = append(tm.Buttons, TouchButton{
			Center:     center,
			CurrentPos: center,
			Radius:     0,
			Button:     buttonValueFromName(b.Button),
			IsSkill:    false,
			FingerID:   fingerID,
		})
		fingerID++
	}
	for _, s := range mappings.SkillCasting {
		center := Point{X: s.Center.X, Y: s.Center.Y}
		tm.Buttons = append(tm.Buttons, TouchButton{
			Center:     center,
			CurrentPos: center,
			Radius:     s.Radius,
			Button:     buttonValueFromName(s.Button),
			IsSkill:    true,
			FingerID:   fingerID,
		})
		fingerID++
	}

	// sorted to permit binary search on event delivery
	sort.SliceStable(tm.Buttons, func(i, j int) bool {
		return tm.Buttons[i].Button < tm.Buttons[j].Button
	})

	return tm, nil
}

// Emit re-serializes the touchmap in the file schema. The button order is
// normalized (sorted), otherwise the result parses back to an equivalent
// map.
func (m *GamepadTouchmap) Emit() ([]byte, error) {
	mappings := &touchmapMappings{
		WalkControl: &touchmapWalkControl{
			Center: touchmapPoint{X: m.Walk.Center.X, Y: m.Walk.Center.Y},
			Radius: m.Walk.Radius,
		},
	}
	for _, b := range m.Buttons {
		if b.IsSkill {
			mappings.SkillCasting = append(mappings.SkillCasting, touchmapSkill{
				Center: touchmapPoint{X: b.Center.X, Y: b.Center.Y},
				Radius: b.Radius,
				Button: buttonNameFromValue(b.Button),
			})
		} else {
			mappings.ButtonMappings = append(mappings.ButtonMappings, touchmapButton{
				Touch:  touchmapPoint{X: b.Center.X, Y: b.Center.Y},
				Button: buttonNameFromValue(b.Button),
			})
		}
	}
	return json.MarshalIndent(&touchmapConfig{Mappings: mappings}, "", "  ")
}
