package ecolor

import (
	"sync"

	"github.com/brutella/hc/log"
)

// Publisher is the part of a Session the controller drives
type Publisher interface {
	Publish(Command) error
}

// StateSink is the host's characteristic store for one lightbulb
type StateSink interface {
	SetOn(bool)
	SetBrightness(int)
}

// Controller translates HomeKit writes into device commands and device events into HomeKit updates
type Controller struct {
	name string
	sink StateSink

	mu      sync.Mutex
	session Publisher
	hue     float64
	sat     float64
	hueSet  bool
	satSet  bool
	onPower func(bool)
}

// NewController returns a controller with no session; commands fail with ErrNoSession until SetSession
func NewController(name string, sink StateSink) *Controller {
	return &Controller{name: name, sink: sink}
}

// SetSession attaches the device session
func (c *Controller) SetSession(p Publisher) {
	c.mu.Lock()
	c.session = p
	c.mu.Unlock()
}

// OnPowerChange registers a hook run after the device reports a power state
func (c *Controller) OnPowerChange(fn func(bool)) {
	c.mu.Lock()
	c.onPower = fn
	c.mu.Unlock()
}

// SetOn switches the light
func (c *Controller) SetOn(on bool) error {
	log.Debug.Printf("[%s] set on: %t", c.name, on)
	if on {
		return c.send(On)
	}
	return c.send(Off)
}

// SetBrightness passes level straight through to the device
func (c *Controller) SetBrightness(level int) error {
	log.Debug.Printf("[%s] set brightness: %d", c.name, level)
	if level < 0 {
		level = 0
	} else if level > 255 {
		level = 255
	}
	return c.send(SetBrightness(uint8(level)))
}

// SetHue records the hue and sends a color once saturation is known too
func (c *Controller) SetHue(hue float64) error {
	c.mu.Lock()
	c.hue, c.hueSet = hue, true
	c.mu.Unlock()
	return c.sendColor()
}

// SetSaturation records the saturation and sends a color once hue is known too
func (c *Controller) SetSaturation(sat float64) error {
	c.mu.Lock()
	c.sat, c.satSet = sat, true
	c.mu.Unlock()
	return c.sendColor()
}

// SetColorTemperature is accepted but the lamps have no white channel command
func (c *Controller) SetColorTemperature(mired int) error {
	log.Info.Printf("[%s] color temperature %d not supported, ignoring", c.name, mired)
	return nil
}

func (c *Controller) sendColor() error {
	c.mu.Lock()
	hue, sat, ready := c.hue, c.sat, c.hueSet && c.satSet
	c.mu.Unlock()
	if !ready {
		return nil
	}

	rgb, ok := HueSatToRGB(hue, sat)
	if !ok {
		log.Info.Printf("[%s] no color for hue %f saturation %f", c.name, hue, sat)
		return nil
	}
	log.Debug.Printf("[%s] set color: %f/%f -> %+v", c.name, hue, sat, rgb)
	return c.send(SetColor(rgb))
}

func (c *Controller) send(cmd Command) error {
	c.mu.Lock()
	p := c.session
	c.mu.Unlock()
	if p == nil {
		log.Info.Printf("[%s] no client", c.name)
		return ErrNoSession
	}
	if err := p.Publish(cmd); err != nil {
		log.Info.Printf("[%s] unable to send [%s]: %s", c.name, cmd, err.Error())
		return err
	}
	return nil
}

// HandleEvent applies a device report to the host
func (c *Controller) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventPower:
		c.sink.SetOn(ev.On)
		c.mu.Lock()
		fn := c.onPower
		c.mu.Unlock()
		if fn != nil {
			fn(ev.On)
		}
	case EventBrightness:
		c.sink.SetBrightness(ev.Brightness)
	}
}
