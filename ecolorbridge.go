package ecolorbridge

import (
	"fmt"

	"github.com/brutella/hc/log"
	"github.com/sirupsen/logrus"

	"github.com/cloudkucooland/ecolorbridge/config"
	"github.com/cloudkucooland/ecolorbridge/ecolor"
	tfhc "github.com/cloudkucooland/ecolorbridge/homecontrol"
	"github.com/cloudkucooland/ecolorbridge/platform"
	"github.com/cloudkucooland/ecolorbridge/tfhttp"
)

// SetupLogging applies the configured level to logrus and hc's loggers
func SetupLogging(c *config.Config) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("LogLevel: %w", err)
	}
	logrus.SetLevel(level)
	if level >= logrus.DebugLevel {
		log.Debug.Enable()
	}
	return nil
}

// BootstrapPlatforms sets up all the platforms
func BootstrapPlatforms(c *config.Config) {
	platform.RegisterPlatform("HTTP", &tfhttp.Platform{})
	platform.RegisterPlatform("HomeControl", tfhc.HCPlatform{})
	platform.RegisterPlatform(ecolor.PlatformName, ecolor.NewPlatform())

	platform.StartupAllPlatforms(c)
}

// StartHC is just a wrapper, no need to expose tfhc to the daemon
func StartHC(c *config.Config) {
	tfhc.StartHC(c)
}
