package service

import (
	"log"
	"sync/atomic"
	"time"
)

// Orientation of the rendered frame. Bit 2 is a horizontal flip applied
// before the rotation encoded in bits 0-1 (quarter turns clockwise).
type Orientation uint8

const (
	Orientation0 Orientation = iota
	Orientation90
	Orientation180
	Orientation270
	OrientationFlip0
	OrientationFlip90
	OrientationFlip180
	OrientationFlip270
)

func (o Orientation) rotation() uint8 { return uint8(o) & 3 }
func (o Orientation) flipped() bool   { return uint8(o)&4 != 0 }

func (o Orientation) String() string {
	names := [...]string{"0", "90", "180", "270",
		"flip0", "flip90", "flip180", "flip270"}
	if int(o) < len(names) {
		return names[o]
	}
	return "invalid"
}

// Apply composes a transform on top of the current orientation
func (o Orientation) Apply(transform Orientation) Orientation {
	rot := transform.rotation()
	if transform.flipped() {
		rot = (4 - o.rotation() + rot) % 4
	} else {
		rot = (o.rotation() + rot) % 4
	}
	flip := o.flipped() != transform.flipped()
	result := Orientation(rot)
	if flip {
		result |= 4
	}
	return result
}

// swapsDimensions reports whether the orientation exchanges width and height
func (o Orientation) swapsDimensions() bool {
	return o.rotation()&1 != 0
}

// Rect is a rendered-frame rectangle in drawable pixels
type Rect struct {
	X, Y, W, H int32
}

// ScreenNotifier delivers screen state changes and viewport directives to
// the rendering front-end
type ScreenNotifier interface {
	NotifyDevice(deviceID string, payload interface{})
}

// Screen tracks the rendering state for one device and performs the
// window-level side effects of local shortcuts. The renderer lives in the
// browser, so side effects are state mutations plus broadcast directives
// the front-end obeys.
//
// All mutations happen on the device's input goroutine.
type Screen struct {
	deviceID string
	notifier ScreenNotifier

	FrameSize   Size
	orientation Orientation
	paused      bool
	showPaused  bool // keep the last frame visible while paused
	video       bool
	fullscreen  bool

	// viewport geometry reported by the front-end
	windowW, windowH float64
	rect             Rect

	FpsCounter FpsCounter
}

func NewScreen(deviceID string, frameSize Size, video bool, notifier ScreenNotifier) *Screen {
	return &Screen{
		deviceID:  deviceID,
		notifier:  notifier,
		FrameSize: frameSize,
		video:     video,
	}
}

func (s *Screen) Paused() bool { return s.paused }
func (s *Screen) Video() bool  { return s.video }

func (s *Screen) Orientation() Orientation { return s.orientation }

// UpdateViewport records the geometry the front-end is currently rendering
// at: window size in CSS pixels, frame rect in drawable pixels.
func (s *Screen) UpdateViewport(windowW, windowH float64, rect Rect) {
	s.windowW = windowW
	s.windowH = windowH
	s.rect = rect
}

// Rect returns the rendered frame rectangle in drawable pixels
func (s *Screen) Rect() Rect { return s.rect }

// DrawableSize returns the drawable surface size in pixels, assuming the
// rect is centered in the drawable
func (s *Screen) DrawableSize() (int32, int32) {
	if s.rect.W <= 0 || s.rect.H <= 0 {
		content := s.contentSize()
		return content.W, content.H
	}
	return s.rect.W + 2*s.rect.X, s.rect.H + 2*s.rect.Y
}

func (s *Screen) notify(action string, extra map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	payload := map[string]interface{}{
		"type":   "screen",
		"action": action,
	}
	for k, v := range extra {
		payload[k] = v
	}
	s.notifier.NotifyDevice(s.deviceID, payload)
}

// SetOrientation applies a new orientation and tells the front-end
func (s *Screen) SetOrientation(o Orientation) {
	if o == s.orientation {
		return
	}
	s.orientation = o
	log.Printf("🔄 [%s] Orientation set to %s", s.deviceID, o)
	s.notify("orientation", map[string]interface{}{"orientation": o.String()})
}

// SetPaused pauses or resumes rendering. hide requests the front-end to
// blank the view instead of freezing on the last frame.
func (s *Screen) SetPaused(paused, hide bool) {
	s.paused = paused
	s.showPaused = paused && !hide
	s.notify("paused", map[string]interface{}{
		"paused": paused,
		"hide":   hide,
	})
}

// TogglePause flips the paused state, hiding the frozen frame
func (s *Screen) TogglePause() {
	s.SetPaused(!s.paused, true)
}

// SwitchFullscreen toggles the front-end fullscreen state
func (s *Screen) SwitchFullscreen() {
	s.fullscreen = !s.fullscreen
	s.notify("fullscreen", map[string]interface{}{"fullscreen": s.fullscreen})
}

// ResizeToFit asks the front-end to fit the window to the frame aspect ratio
func (s *Screen) ResizeToFit() {
	s.notify("resize", map[string]interface{}{"mode": "fit"})
}

// ResizeToPixelPerfect asks the front-end for a 1:1 pixel mapping
func (s *Screen) ResizeToPixelPerfect() {
	s.notify("resize", map[string]interface{}{"mode": "pixel-perfect"})
}

// contentSize is the frame size as displayed, after orientation
func (s *Screen) contentSize() Size {
	if s.orientation.swapsDimensions() {
		return Size{W: s.FrameSize.H, H: s.FrameSize.W}
	}
	return s.FrameSize
}

// HidpiScaleCoords converts window (CSS pixel) coordinates to drawable
// pixel coordinates
func (s *Screen) HidpiScaleCoords(x, y int32) (int32, int32) {
	if s.windowW <= 0 || s.windowH <= 0 || s.rect.W <= 0 || s.rect.H <= 0 {
		return x, y
	}
	// assume drawable size == rect union; the front-end reports the rect in
	// drawable pixels and the window in CSS pixels
	sx := float64(s.rect.W+2*s.rect.X) / s.windowW
	sy := float64(s.rect.H+2*s.rect.Y) / s.windowH
	return int32(float64(x) * sx), int32(float64(y) * sy)
}

// ConvertWindowToFrameCoords maps window coordinates to device-frame
// coordinates, accounting for hidpi scale, the rendered rect and the
// current orientation
func (s *Screen) ConvertWindowToFrameCoords(x, y int32) Point {
	x, y = s.HidpiScaleCoords(x, y)
	return s.ConvertDrawableToFrameCoords(x, y)
}

// ConvertDrawableToFrameCoords maps drawable coordinates to device-frame
// coordinates
func (s *Screen) ConvertDrawableToFrameCoords(x, y int32) Point {
	content := s.contentSize()

	r := s.rect
	if r.W <= 0 || r.H <= 0 {
		// no geometry reported yet, assume a 1:1 view of the content
		r = Rect{X: 0, Y: 0, W: content.W, H: content.H}
	}

	cx := int32(int64(x-r.X) * int64(content.W) / int64(r.W))
	cy := int32(int64(y-r.Y) * int64(content.H) / int64(r.H))

	return s.orientation.unapplyToPoint(Point{X: cx, Y: cy}, s.FrameSize)
}

// unapplyToPoint maps a point in content (displayed) coordinates back to
// frame coordinates
func (o Orientation) unapplyToPoint(p Point, frameSize Size) Point {
	// undo the rotation one quarter turn at a time, tracking the plane size
	plane := frameSize
	if o.swapsDimensions() {
		plane = Size{W: frameSize.H, H: frameSize.W}
	}
	for i := uint8(0); i < o.rotation(); i++ {
		// inverse of a clockwise quarter turn
		p = Point{X: p.Y, Y: plane.W - p.X}
		plane = Size{W: plane.H, H: plane.W}
	}
	if o.flipped() {
		p.X = frameSize.W - p.X
	}
	return p
}

// FpsCounter counts frames rendered by the front-end. Start/Stop are
// single-writer from the input goroutine; frame reports arrive from the
// websocket read goroutine, so the counters are atomics.
type FpsCounter struct {
	started      atomic.Bool
	nrRendered   atomic.Uint32
	intervalFrom atomic.Int64
}

func (f *FpsCounter) IsStarted() bool { return f.started.Load() }

func (f *FpsCounter) Start() {
	f.intervalFrom.Store(time.Now().UnixMilli())
	f.nrRendered.Store(0)
	f.started.Store(true)
	log.Println("📈 FPS counter started")
}

func (f *FpsCounter) Stop() {
	f.started.Store(false)
	log.Println("📉 FPS counter stopped")
}

// AddRenderedFrame records one rendered frame and logs the rate once per
// second interval
func (f *FpsCounter) AddRenderedFrame() {
	if !f.started.Load() {
		return
	}
	rendered := f.nrRendered.Add(1)
	from := f.intervalFrom.Load()
	now := time.Now().UnixMilli()
	if now-from >= 1000 {
		if f.intervalFrom.CompareAndSwap(from, now) {
			f.nrRendered.Store(0)
			log.Printf("📊 %d fps", rendered)
		}
	}
}
