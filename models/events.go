package models

// Input event types sent by the frontend over the websocket
const (
	EventText           = "text"
	EventKey            = "key"
	EventMouseMotion    = "mousemotion"
	EventMouseButton    = "mousebutton"
	EventMouseWheel     = "mousewheel"
	EventTouchFinger    = "touchfinger"
	EventDropFile       = "dropfile"
	EventGamepadAxis    = "gamepadaxis"
	EventGamepadButton  = "gamepadbutton"
	EventGamepadDevice  = "gamepaddevice"
	EventClipboardSync  = "clipboard"
	EventViewportUpdate = "viewport"
	EventTouchmapReload = "touchmapreload" // internal, from the file watcher
	EventTouchmapLoad   = "touchmapload"   // internal, from the HTTP API
	EventTouchmapOff    = "touchmapoff"    // internal, from the HTTP API
)

// Event actions (type field disambiguates down/up/move variants)
const (
	ActionDown = "down"
	ActionUp   = "up"
	ActionMove = "move"
)

// Gamepad device events
const (
	GamepadAdded   = "added"
	GamepadRemoved = "removed"
)

// TouchMouseID marks mouse events synthesized from touch by the frontend.
// Mirrors SDL_TOUCH_MOUSEID (-1 as uint32).
const TouchMouseID = uint32(0xFFFFFFFF)

// InputEvent is the tagged union of host input events. The frontend
// normalizes browser keys into SDL keycode/modifier values before sending,
// so the backend sees one flat keyspace regardless of client.
type InputEvent struct {
	Type string `json:"type"`

	// key / text
	Action   string `json:"action,omitempty"`
	Keycode  uint32 `json:"keycode,omitempty"`
	Scancode uint32 `json:"scancode,omitempty"`
	Mod      uint16 `json:"mod,omitempty"`
	Repeat   bool   `json:"repeat,omitempty"`
	Text     string `json:"text,omitempty"`

	// mouse
	X      int32   `json:"x,omitempty"`
	Y      int32   `json:"y,omitempty"`
	XRel   int32   `json:"xrel,omitempty"`
	YRel   int32   `json:"yrel,omitempty"`
	State  uint32  `json:"state,omitempty"` // buttons held (motion) or pressed/released (gamepad button)
	Which  uint32  `json:"which,omitempty"` // device instance ID
	Button uint8   `json:"button,omitempty"`
	Clicks uint8   `json:"clicks,omitempty"`
	HScrl  float32 `json:"preciseX,omitempty"`
	VScrl  float32 `json:"preciseY,omitempty"`

	// touch finger, coordinates normalized to [0;1]
	FingerID uint64  `json:"fingerId,omitempty"`
	FX       float32 `json:"fx,omitempty"`
	FY       float32 `json:"fy,omitempty"`
	Pressure float32 `json:"pressure,omitempty"`

	// drop file
	Path string `json:"path,omitempty"`

	// gamepad axis
	Axis  uint8 `json:"axis,omitempty"`
	Value int16 `json:"value,omitempty"`

	// gamepad device
	Event string `json:"event,omitempty"` // added, removed

	// viewport geometry report (window size, rendered frame rect, hidpi scale)
	WindowW float64 `json:"windowW,omitempty"`
	WindowH float64 `json:"windowH,omitempty"`
	RectX   int32   `json:"rectX,omitempty"`
	RectY   int32   `json:"rectY,omitempty"`
	RectW   int32   `json:"rectW,omitempty"`
	RectH   int32   `json:"rectH,omitempty"`
}
