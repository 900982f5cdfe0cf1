package service

import "testing"

func TestOrientationApplyRotations(t *testing.T) {
	cases := []struct {
		src, transform, want Orientation
	}{
		{Orientation0, Orientation90, Orientation90},
		{Orientation90, Orientation90, Orientation180},
		{Orientation270, Orientation90, Orientation0},
		{Orientation90, Orientation270, Orientation0},
		{Orientation180, Orientation180, Orientation0},
		{Orientation0, OrientationFlip0, OrientationFlip0},
		{OrientationFlip0, OrientationFlip0, Orientation0},
		{Orientation0, OrientationFlip180, OrientationFlip180},
		{OrientationFlip180, OrientationFlip180, Orientation0},
	}
	for _, tc := range cases {
		if got := tc.src.Apply(tc.transform); got != tc.want {
			t.Errorf("%s.Apply(%s) = %s, want %s", tc.src, tc.transform, got, tc.want)
		}
	}
}

func TestOrientationFlip180IsInvolution(t *testing.T) {
	for o := Orientation0; o <= OrientationFlip270; o++ {
		if got := o.Apply(OrientationFlip180).Apply(OrientationFlip180); got != o {
			t.Errorf("%s: flip180 twice = %s", o, got)
		}
	}
}

func TestOrientationSwapsDimensions(t *testing.T) {
	swaps := map[Orientation]bool{
		Orientation0:       false,
		Orientation90:      true,
		Orientation180:     false,
		Orientation270:     true,
		OrientationFlip90:  true,
		OrientationFlip180: false,
	}
	for o, want := range swaps {
		if got := o.swapsDimensions(); got != want {
			t.Errorf("%s.swapsDimensions() = %v, want %v", o, got, want)
		}
	}
}

func TestConvertDrawableToFrameCoordsIdentity(t *testing.T) {
	s := NewScreen("d", Size{W: 400, H: 600}, true, nil)

	// no viewport reported: 1:1 mapping
	if got := s.ConvertDrawableToFrameCoords(200, 300); got != (Point{X: 200, Y: 300}) {
		t.Errorf("identity conversion = %+v", got)
	}
}

func TestConvertDrawableToFrameCoordsScaled(t *testing.T) {
	s := NewScreen("d", Size{W: 400, H: 600}, true, nil)
	// frame rendered at half size, offset by (50, 25)
	s.UpdateViewport(300, 350, Rect{X: 50, Y: 25, W: 200, H: 300})

	if got := s.ConvertDrawableToFrameCoords(50, 25); got != (Point{X: 0, Y: 0}) {
		t.Errorf("rect origin = %+v, want (0,0)", got)
	}
	if got := s.ConvertDrawableToFrameCoords(150, 175); got != (Point{X: 200, Y: 300}) {
		t.Errorf("rect center = %+v, want (200,300)", got)
	}
}

func TestConvertDrawableToFrameCoordsRotated(t *testing.T) {
	s := NewScreen("d", Size{W: 400, H: 600}, true, nil)
	s.SetOrientation(Orientation90)

	// content is 600x400; the content origin is the frame's bottom-left
	// corner after a clockwise quarter turn
	got := s.ConvertDrawableToFrameCoords(0, 0)
	if got != (Point{X: 0, Y: 600}) {
		t.Errorf("rotated origin = %+v, want (0,600)", got)
	}
}

func TestScreenNotifications(t *testing.T) {
	n := &notifyRecorder{}
	s := NewScreen("d", Size{W: 400, H: 600}, true, n)

	s.SwitchFullscreen()
	s.ResizeToPixelPerfect()
	s.SetOrientation(Orientation180)
	s.SetPaused(true, false)

	actions := make([]string, 0, len(n.payloads))
	for _, p := range n.payloads {
		actions = append(actions, p["action"].(string))
	}
	want := []string{"fullscreen", "resize", "orientation", "paused"}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action %d = %s, want %s", i, actions[i], want[i])
		}
	}

	if !s.Paused() {
		t.Error("screen not paused")
	}
	// same orientation again: no extra notification
	s.SetOrientation(Orientation180)
	if len(n.payloads) != len(want) {
		t.Error("redundant orientation change notified")
	}
}

func TestFpsCounter(t *testing.T) {
	var f FpsCounter
	if f.IsStarted() {
		t.Fatal("counter started before Start")
	}
	f.AddRenderedFrame() // no-op while stopped

	f.Start()
	if !f.IsStarted() {
		t.Fatal("counter not started")
	}
	f.AddRenderedFrame()
	f.Stop()
	if f.IsStarted() {
		t.Fatal("counter still started after Stop")
	}
}
