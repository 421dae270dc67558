package tfhc

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/brutella/hc"
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/brutella/hc/util"

	tfaccessory "github.com/cloudkucooland/ecolorbridge/accessory"
	"github.com/cloudkucooland/ecolorbridge/config"
	"github.com/cloudkucooland/ecolorbridge/platform"
)

// HCPlatform is the platform handle
type HCPlatform struct {
	Running bool
}

// accessories can be added by other platforms before ours has started up
var (
	hcsMu sync.Mutex
	hcs   = make(map[string]*tfaccessory.TFAccessory)
)

// Startup is called by the platform bootstrap
func (h HCPlatform) Startup(c *config.Config) platform.Control {
	h.Running = true
	return h
}

// StartHC is called after all devices are discovered/registered to start operation
func StartHC(c *config.Config) {
	storage, err := util.NewFileStorage(filepath.Join(c.ConfigDir, "serials"))
	if err != nil {
		log.Info.Printf("unable to get storage: %s", err.Error())
	}
	serial := c.ID
	if serial == "" && storage != nil {
		serial = util.GetSerialNumberForAccessoryName("EcolorRoot", storage)
	}

	if c.Name == "" {
		c.Name = "Ecolor"
	}
	root := accessory.NewBridge(accessory.Info{
		Name:             c.Name,
		ID:               1,
		SerialNumber:     serial,
		Manufacturer:     "deviousness",
		Model:            "EcolorBridge",
		FirmwareRevision: "0.1.0",
	})
	root.Accessory.OnIdentify(func() {
		log.Info.Printf("bridge root identify called: %+v", root.Accessory)
	})

	transport, err := hc.NewIPTransport(c.HCConfig, root.Accessory, Accessories()...)
	if err != nil {
		log.Info.Panic(err)
	}

	hc.OnTermination(func() {
		<-transport.Stop()
	})
	go transport.Start()
	uri, _ := transport.XHMURI()
	log.Info.Printf("add this bridge with: %s", uri)
}

// Accessories lists every registered accessory, ordered by ID
func Accessories() []*accessory.Accessory {
	hcsMu.Lock()
	defer hcsMu.Unlock()
	values := make([]*accessory.Accessory, 0, len(hcs))
	for _, v := range hcs {
		values = append(values, v.Accessory)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].ID < values[j].ID })
	return values
}

// Shutdown is called at process teardown
func (h HCPlatform) Shutdown() platform.Control {
	h.Running = false
	return h
}

// AddAccessory registers a device with HC
func (h HCPlatform) AddAccessory(a *tfaccessory.TFAccessory) {
	// catch devices that didn't get set up properly
	if a.Accessory == nil {
		log.Info.Printf("accessory unset: %v", a.Info)
		return
	}

	a.Accessory.OnIdentify(func() {
		log.Info.Printf("identify called for [%s]: %+v", a.Name, a.Accessory)
		for _, service := range a.Accessory.GetServices() {
			log.Info.Printf("service: %+v", service)
			for _, char := range service.GetCharacteristics() {
				log.Info.Printf("characteristic : %+v", char)
			}
		}
	})

	hcsMu.Lock()
	hcs[a.Name] = a
	hcsMu.Unlock()
}

// GetAccessory looks up a device by name -- you probably want the various platform's version, not this
func (h HCPlatform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	hcsMu.Lock()
	defer hcsMu.Unlock()
	a, ok := hcs[name]
	return a, ok
}

// Background runs the various background tasks: none for HC
func (h HCPlatform) Background() {
}
