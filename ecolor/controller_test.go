package ecolor

import (
	"bytes"
	"errors"
	"testing"
)

type fakePublisher struct {
	sent []Command
	err  error
}

func (f *fakePublisher) Publish(c Command) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, c)
	return nil
}

type fakeSink struct {
	on         []bool
	brightness []int
}

func (f *fakeSink) SetOn(on bool) { f.on = append(f.on, on) }
func (f *fakeSink) SetBrightness(lvl int) { f.brightness = append(f.brightness, lvl) }

func newTestController() (*Controller, *fakePublisher, *fakeSink) {
	pub, sink := &fakePublisher{}, &fakeSink{}
	c := NewController("lamp", sink)
	c.SetSession(pub)
	return c, pub, sink
}

func TestControllerSetOn(t *testing.T) {
	c, pub, _ := newTestController()

	if err := c.SetOn(true); err != nil {
		t.Fatalf("SetOn(true) error = %v", err)
	}
	if err := c.SetOn(false); err != nil {
		t.Fatalf("SetOn(false) error = %v", err)
	}
	if len(pub.sent) != 2 || !bytes.Equal(pub.sent[0], On) || !bytes.Equal(pub.sent[1], Off) {
		t.Errorf("sent = %v, want [On Off]", pub.sent)
	}
}

func TestControllerSetBrightness(t *testing.T) {
	tests := []struct {
		level int
		want  Command
	}{
		{77, Command{0xAA, 0x03, 77}},
		{0, Command{0xAA, 0x03, 0}},
		{-5, Command{0xAA, 0x03, 0}},
		{300, Command{0xAA, 0x03, 255}},
	}

	for _, tt := range tests {
		c, pub, _ := newTestController()
		if err := c.SetBrightness(tt.level); err != nil {
			t.Fatalf("SetBrightness(%d) error = %v", tt.level, err)
		}
		if len(pub.sent) != 1 || !bytes.Equal(pub.sent[0], tt.want) {
			t.Errorf("SetBrightness(%d) sent %v, want %v", tt.level, pub.sent, tt.want)
		}
	}
}

func TestControllerColorNeedsHueAndSaturation(t *testing.T) {
	c, pub, _ := newTestController()

	if err := c.SetHue(0); err != nil {
		t.Fatalf("SetHue() error = %v", err)
	}
	if len(pub.sent) != 0 {
		t.Fatalf("sent %v with only hue known", pub.sent)
	}

	if err := c.SetSaturation(100); err != nil {
		t.Fatalf("SetSaturation() error = %v", err)
	}
	if len(pub.sent) != 1 || !bytes.Equal(pub.sent[0], SetColor(RGB{255, 0, 0})) {
		t.Fatalf("sent %v, want red", pub.sent)
	}

	if err := c.SetHue(240); err != nil {
		t.Fatalf("SetHue() error = %v", err)
	}
	if len(pub.sent) != 2 || !bytes.Equal(pub.sent[1], SetColor(RGB{0, 0, 255})) {
		t.Errorf("sent %v, want blue last", pub.sent)
	}
}

func TestControllerColorOutOfRange(t *testing.T) {
	c, pub, _ := newTestController()
	_ = c.SetSaturation(50)
	if err := c.SetHue(-20); err != nil {
		t.Errorf("SetHue(-20) error = %v", err)
	}
	if len(pub.sent) != 0 {
		t.Errorf("sent %v for a hue with no color", pub.sent)
	}
}

func TestControllerColorTemperatureIgnored(t *testing.T) {
	c, pub, _ := newTestController()
	if err := c.SetColorTemperature(300); err != nil {
		t.Errorf("SetColorTemperature() error = %v", err)
	}
	if len(pub.sent) != 0 {
		t.Errorf("sent %v for a color temperature", pub.sent)
	}
}

func TestControllerNoSession(t *testing.T) {
	c := NewController("lamp", &fakeSink{})
	if err := c.SetOn(true); !errors.Is(err, ErrNoSession) {
		t.Errorf("SetOn() error = %v, want %v", err, ErrNoSession)
	}
	if err := c.SetBrightness(10); !errors.Is(err, ErrNoSession) {
		t.Errorf("SetBrightness() error = %v, want %v", err, ErrNoSession)
	}
}

func TestControllerPublishError(t *testing.T) {
	c, pub, _ := newTestController()
	pub.err = ErrNotConnected
	if err := c.SetOn(true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetOn() error = %v, want %v", err, ErrNotConnected)
	}
}

func TestControllerHandleEvent(t *testing.T) {
	c, _, sink := newTestController()
	var hooked []bool
	c.OnPowerChange(func(on bool) { hooked = append(hooked, on) })

	c.HandleEvent(Event{Kind: EventPower, On: true})
	c.HandleEvent(Event{Kind: EventBrightness, Brightness: 77})
	c.HandleEvent(Event{Kind: EventPower, On: false})

	if len(sink.on) != 2 || !sink.on[0] || sink.on[1] {
		t.Errorf("sink on = %v, want [true false]", sink.on)
	}
	if len(sink.brightness) != 1 || sink.brightness[0] != 77 {
		t.Errorf("sink brightness = %v, want [77]", sink.brightness)
	}
	if len(hooked) != 2 || !hooked[0] || hooked[1] {
		t.Errorf("power hook = %v, want [true false]", hooked)
	}
}
