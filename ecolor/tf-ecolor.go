package ecolor

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/google/uuid"

	tfaccessory "github.com/cloudkucooland/ecolorbridge/accessory"
	"github.com/cloudkucooland/ecolorbridge/action"
	"github.com/cloudkucooland/ecolorbridge/config"
	"github.com/cloudkucooland/ecolorbridge/devices"
	"github.com/cloudkucooland/ecolorbridge/platform"
	"github.com/cloudkucooland/ecolorbridge/runner"
)

// PlatformName is what accessories and actions refer to
const PlatformName = "Ecolor"

const discoveryTimeout = 30 * time.Second

// Platform is the handle to the Ecolor account and its devices
type Platform struct {
	// Dial builds each device's transport, NewMQTTTransport unless replaced
	Dial Dialer

	mu      sync.Mutex
	running bool
	devices map[string]*device // by GUID
}

// device is everything we hold for one lamp
type device struct {
	acc     *tfaccessory.TFAccessory
	bulb    *devices.ColorLightbulb
	ctl     *Controller
	session *Session // nil when the session could not be built
	info    Device
}

// NewPlatform returns an empty platform using the MQTT transport
func NewPlatform() *Platform {
	return &Platform{
		Dial:    NewMQTTTransport,
		devices: make(map[string]*device),
	}
}

// Startup logs in, lists the account's devices and builds an accessory and session for each.
// Nothing connects until Background.
func (p *Platform) Startup(c *config.Config) platform.Control {
	if err := c.Ecolor.Validate(); err != nil {
		log.Info.Printf("ecolor disabled: %s", err.Error())
		return p
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
	defer cancel()

	api := NewClient(c.Ecolor.URL, c.Ecolor.Username, c.Ecolor.Password)
	if err := api.Login(ctx); err != nil {
		log.Info.Printf("error signing in to ecolor: %s", err.Error())
		return p
	}
	devs, err := api.Devices(ctx)
	if err != nil {
		log.Info.Printf("error fetching ecolor devices: %s", err.Error())
		return p
	}

	for _, d := range devs {
		p.addDevice(d, &c.Ecolor)
	}

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()
	return p
}

// AccessoryID derives a stable HomeKit accessory ID from the device GUID
func AccessoryID(guid string) uint64 {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(guid))
	id := binary.BigEndian.Uint64(u[:8])
	// 1 is the bridge itself
	if id <= 1 {
		id += 2
	}
	return id
}

func (p *Platform) addDevice(d Device, cfg *config.EcolorConfig) {
	if d.GUID == "" {
		log.Info.Printf("ecolor device without guid, skipping: %+v", d)
		return
	}
	p.mu.Lock()
	_, exists := p.devices[d.GUID]
	p.mu.Unlock()
	if exists {
		log.Info.Printf("already have ecolor device: %s", d.GUID)
		return
	}

	info := accessory.Info{
		Name:             firstOf(d.BLEAdvName, d.Name, d.GUID),
		SerialNumber:     firstOf(d.MAC, d.GUID),
		Manufacturer:     "Ecolor",
		Model:            firstOf(d.SKU, "Ecolor"),
		FirmwareRevision: d.SWVersion,
		ID:               AccessoryID(d.GUID),
	}
	log.Info.Printf("adding ecolor device [%s]: [%s]", info.Name, info.Model)

	bulb := devices.NewColorLightbulb(info)
	ctl := NewController(info.Name, bulb)
	a := &tfaccessory.TFAccessory{
		Platform:  PlatformName,
		Name:      d.GUID,
		Type:      accessory.TypeLightbulb,
		Info:      info,
		Accessory: bulb.Accessory,
		Device:    bulb,
		Actions:   cfg.Actions[d.GUID],
		Runner:    p.actionRunner,
	}
	dev := &device{acc: a, bulb: bulb, ctl: ctl, info: d}

	session, err := NewSession(SessionConfig{
		Identity:   d.Identity(),
		BrokerURL:  cfg.MQTTURL,
		CA:         cfg.CA,
		ClientCert: cfg.ClientCert,
		ClientKey:  cfg.ClientKey,
	}, p.Dial, ctl)
	if err != nil {
		// the accessory still shows up, it just won't respond
		log.Info.Printf("[%s] unable to build session: %s", info.Name, err.Error())
	} else {
		dev.session = session
		ctl.SetSession(session)
	}

	bulb.Lightbulb.On.OnValueRemoteUpdate(func(on bool) {
		_ = ctl.SetOn(on)
	})
	bulb.Lightbulb.Brightness.OnValueRemoteUpdate(func(level int) {
		_ = ctl.SetBrightness(level)
	})
	bulb.Lightbulb.Hue.OnValueRemoteUpdate(func(hue float64) {
		_ = ctl.SetHue(hue)
	})
	bulb.Lightbulb.Saturation.OnValueRemoteUpdate(func(sat float64) {
		_ = ctl.SetSaturation(sat)
	})
	bulb.Lightbulb.ColorTemperature.OnValueRemoteUpdate(func(mired int) {
		_ = ctl.SetColorTemperature(mired)
	})
	ctl.OnPowerChange(func(on bool) {
		state := "Off"
		if on {
			state = "On"
		}
		runner.RunActions(a.MatchActions(state))
	})

	if hc, ok := platform.GetPlatform("HomeControl"); ok {
		hc.AddAccessory(a)
	} else {
		log.Info.Println("HomeControl platform does not exist, ecolor device not visible")
	}

	p.mu.Lock()
	p.devices[d.GUID] = dev
	p.mu.Unlock()
}

// Background connects every session
func (p *Platform) Background() {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if !running {
		return
	}
	for _, d := range p.snapshot() {
		if d.session == nil {
			continue
		}
		if err := d.session.Connect(); err != nil {
			log.Info.Printf("[%s] connect: %s", d.acc.Info.Name, err.Error())
		}
	}
}

// Shutdown closes every session
func (p *Platform) Shutdown() platform.Control {
	for _, d := range p.snapshot() {
		if d.session != nil {
			d.session.Close()
		}
	}
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return p
}

// AddAccessory is not used, devices are enumerated from the account at startup
func (p *Platform) AddAccessory(a *tfaccessory.TFAccessory) {
	log.Info.Printf("do not add ecolor devices, they are discovered from the account: %s", a.Name)
}

// GetAccessory looks up a device by GUID
func (p *Platform) GetAccessory(guid string) (*tfaccessory.TFAccessory, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.devices[guid]
	if !ok {
		return nil, false
	}
	return d.acc, true
}

// DeviceStatus is the per-device view served by the HTTP control channel
type DeviceStatus struct {
	GUID       string `json:"guid"`
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	State      string `json:"state"`
	On         bool   `json:"on"`
	Brightness int    `json:"brightness"`
	LastErr    string `json:"error,omitempty"`
}

// Status lists every device, ordered by name
func (p *Platform) Status() []DeviceStatus {
	var out []DeviceStatus
	for _, d := range p.snapshot() {
		on, level := d.bulb.State()
		st := DeviceStatus{
			GUID:       d.info.GUID,
			Name:       d.acc.Info.Name,
			SKU:        d.info.SKU,
			State:      "no session",
			On:         on,
			Brightness: level,
		}
		if d.session != nil {
			st.State = d.session.State().String()
			if err := d.session.Err(); err != nil {
				st.LastErr = err.Error()
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Command runs a named command against a device: on, off or status
func (p *Platform) Command(guid, cmd string) error {
	p.mu.Lock()
	d, ok := p.devices[guid]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown ecolor device: %s", guid)
	}

	switch cmd {
	case "on":
		return d.ctl.SetOn(true)
	case "off":
		return d.ctl.SetOn(false)
	case "status":
		if d.session == nil {
			return ErrNoSession
		}
		if err := d.session.Publish(OnStatus); err != nil {
			return err
		}
		return d.session.Publish(GetBrightness)
	default:
		return fmt.Errorf("unknown ecolor command: %s", cmd)
	}
}

func (p *Platform) actionRunner(a *tfaccessory.TFAccessory, act *action.Action) {
	log.Info.Printf("in ecolor action runner: %s %+v", a.Name, act)
	p.mu.Lock()
	d, ok := p.devices[a.Name]
	p.mu.Unlock()
	if !ok {
		log.Info.Printf("unknown ecolor device: %s", a.Name)
		return
	}

	var err error
	switch act.Verb {
	case "On":
		err = d.ctl.SetOn(true)
	case "Off":
		err = d.ctl.SetOn(false)
	case "Toggle":
		on, _ := d.bulb.State()
		err = d.ctl.SetOn(!on)
	case "SetBrightness":
		level, perr := strconv.Atoi(strings.TrimSpace(act.Value))
		if perr != nil {
			log.Info.Printf("bad brightness [%s]: %s", act.Value, perr.Error())
			return
		}
		err = d.ctl.SetBrightness(level)
	case "SetColor":
		hue, sat, perr := parseHueSat(act.Value)
		if perr != nil {
			log.Info.Printf("bad color [%s]: %s", act.Value, perr.Error())
			return
		}
		// update GUI, the lamps don't echo colors
		d.bulb.SetColor(hue, sat)
		if err = d.ctl.SetHue(hue); err == nil {
			err = d.ctl.SetSaturation(sat)
		}
	default:
		log.Info.Printf("unknown ecolor verb: %s", act.Verb)
		return
	}
	if err != nil {
		log.Info.Printf("[%s] %s: %s", a.Name, act.Verb, err.Error())
	}
}

// parseHueSat reads "hue,saturation"
func parseHueSat(v string) (float64, float64, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want hue,saturation")
	}
	hue, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	sat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return hue, sat, nil
}

func (p *Platform) snapshot() []*device {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*device, 0, len(p.devices))
	for _, d := range p.devices {
		out = append(out, d)
	}
	return out
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
