package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brutella/hc"
	"github.com/cloudkucooland/ecolorbridge/action"
	"gopkg.in/yaml.v3"
)

// Config is the primary daemon configuration...
type Config struct {
	ConfigDir  string `json:"-" yaml:"-"` // passed in from CLI
	ConfigFile string `json:"-" yaml:"-"` // server.json

	// net.Dial address format, :port is good enough; empty disables the HTTP control channel
	HTTPAddress string `json:"HTTPAddress" yaml:"httpaddress"`
	// what this bridge shows as
	Name string `json:"Name" yaml:"name"`
	// displayed serial number -- if you run multiple instances, make sure each has a distinct ID
	ID string `json:"ID" yaml:"id"`
	// logrus level name, "debug" also turns on hc debug logging
	LogLevel string `json:"LogLevel" yaml:"loglevel"`
	// base HomeControl configuration
	HCConfig hc.Config    `json:"HCConfig" yaml:"hcconfig"`
	Ecolor   EcolorConfig `json:"Ecolor" yaml:"ecolor"`
}

// EcolorConfig is the vendor account and broker material.
// Certificates and the key are PEM blocks flattened to one line, spaces in place of newlines.
type EcolorConfig struct {
	Username   string `json:"username" yaml:"username"`
	Password   string `json:"password" yaml:"password"`
	URL        string `json:"url" yaml:"url"` // REST base, vendor default when empty
	MQTTURL    string `json:"mqttUrl" yaml:"mqtturl"`
	CA         string `json:"ca" yaml:"ca"`
	ClientCert string `json:"clientCert" yaml:"clientcert"`
	ClientKey  string `json:"clientKey" yaml:"clientkey"`

	// actions to run when a device reports a power change, keyed by device GUID
	Actions map[string][]action.Action `json:"actions" yaml:"actions"`
}

// Load reads a JSON or YAML (by extension) config file and validates it
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &c)
	default:
		err = json.Unmarshal(raw, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if c.Name == "" {
		c.Name = "Ecolor"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.ConfigFile = path
	c.ConfigDir = filepath.Dir(path)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &c, nil
}

// Validate checks presence only; certificate contents are checked when a session is built
func (c *Config) Validate() error {
	return c.Ecolor.Validate()
}

// Validate names every missing field at once
func (e *EcolorConfig) Validate() error {
	var errs []string
	required := []struct {
		name, value string
	}{
		{"ecolor.username", e.Username},
		{"ecolor.password", e.Password},
		{"ecolor.mqttUrl", e.MQTTURL},
		{"ecolor.ca", e.CA},
		{"ecolor.clientCert", e.ClientCert},
		{"ecolor.clientKey", e.ClientKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, r.name+" is required")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
