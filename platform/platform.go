package platform

import (
	"sort"
	"sync"

	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/ecolorbridge/accessory"
	"github.com/cloudkucooland/ecolorbridge/config"
)

// Control is the interface which all platforms must satisfy
type Control interface {
	Startup(*config.Config) Control
	Background()
	Shutdown() Control
	AddAccessory(*accessory.TFAccessory)
	GetAccessory(string) (*accessory.TFAccessory, bool)
}

var (
	mu        sync.RWMutex
	platforms = make(map[string]Control)
)

// RegisterPlatform is called whenever a new platform is instantiated
func RegisterPlatform(name string, control Control) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := platforms[name]; !ok {
		platforms[name] = control
	}
}

// GetPlatform looks up a registered platform by name
func GetPlatform(name string) (Control, bool) {
	mu.RLock()
	defer mu.RUnlock()
	pc, ok := platforms[name]
	return pc, ok
}

// names in a stable order so startup logs read the same every run
func names() []string {
	mu.RLock()
	defer mu.RUnlock()
	n := make([]string, 0, len(platforms))
	for name := range platforms {
		n = append(n, name)
	}
	sort.Strings(n)
	return n
}

// ShutdownAllPlatforms is called at process stop to shutdown all platforms
func ShutdownAllPlatforms() {
	for _, name := range names() {
		log.Info.Printf("shutting down: %s", name)
		p, _ := GetPlatform(name)
		set(name, p.Shutdown())
	}
}

// StartupAllPlatforms is called at process start to initialize all platforms
func StartupAllPlatforms(c *config.Config) {
	for _, name := range names() {
		log.Info.Printf("starting up: %s", name)
		p, _ := GetPlatform(name)
		set(name, p.Startup(c))
	}
}

// Background starts the background processes for every platform
func Background() {
	for _, name := range names() {
		p, _ := GetPlatform(name)
		p.Background()
	}
}

func set(name string, c Control) {
	mu.Lock()
	platforms[name] = c
	mu.Unlock()
}
