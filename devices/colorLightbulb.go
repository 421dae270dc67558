package devices

import (
	"sync"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// ColorLightbulb is a dimmable RGB bulb; ColorTemperature is exposed but the Ecolor lamps ignore it
type ColorLightbulb struct {
	*accessory.Accessory
	Lightbulb *ColorLightbulbSvc

	// sessions report from their own goroutines
	mu sync.Mutex
}

func NewColorLightbulb(info accessory.Info) *ColorLightbulb {
	acc := ColorLightbulb{}
	acc.Accessory = accessory.New(info, accessory.TypeLightbulb)
	acc.Lightbulb = NewColorLightbulbSvc()

	acc.AddService(acc.Lightbulb.Service)

	return &acc
}

// SetOn updates the HomeKit side only
func (c *ColorLightbulb) SetOn(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Lightbulb.On.GetValue() != on {
		c.Lightbulb.On.SetValue(on)
	}
}

// SetBrightness updates the HomeKit side only, HomeKit tops out at 100
func (c *ColorLightbulb) SetBrightness(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	if c.Lightbulb.Brightness.GetValue() != level {
		c.Lightbulb.Brightness.SetValue(level)
	}
}

// SetColor updates the HomeKit hue and saturation, the lamps never report color
func (c *ColorLightbulb) SetColor(hue, saturation float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lightbulb.Hue.SetValue(hue)
	c.Lightbulb.Saturation.SetValue(saturation)
}

// State reads power and brightness as last reported
func (c *ColorLightbulb) State() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Lightbulb.On.GetValue(), c.Lightbulb.Brightness.GetValue()
}

type ColorLightbulbSvc struct {
	*service.Service

	On               *characteristic.On
	Brightness       *characteristic.Brightness
	Hue              *characteristic.Hue
	Saturation       *characteristic.Saturation
	ColorTemperature *characteristic.ColorTemperature
}

func NewColorLightbulbSvc() *ColorLightbulbSvc {
	svc := ColorLightbulbSvc{}
	svc.Service = service.New(service.TypeLightbulb)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	svc.Brightness = characteristic.NewBrightness()
	svc.AddCharacteristic(svc.Brightness.Characteristic)

	svc.Hue = characteristic.NewHue()
	svc.AddCharacteristic(svc.Hue.Characteristic)

	svc.Saturation = characteristic.NewSaturation()
	svc.AddCharacteristic(svc.Saturation.Characteristic)

	svc.ColorTemperature = characteristic.NewColorTemperature()
	svc.AddCharacteristic(svc.ColorTemperature.Characteristic)

	return &svc
}
