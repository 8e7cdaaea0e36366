// Package config loads the resolverd configuration keys that the control
// client consumes.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultControlPort is the control channel port used when the config file
// does not set one.
const DefaultControlPort = 8953

// DefaultServerCertName is the certificate name the client verifies on the
// server when the config file does not set one.
const DefaultServerCertName = "resolverd"

// Config is the subset of the resolverd config file relevant to remote
// control.
type Config struct {
	RemoteControl RemoteControl `yaml:"remote-control"`
}

// RemoteControl mirrors the remote-control block of the daemon config.
type RemoteControl struct {
	// Enable is advisory on the client side: when false the attempt still
	// proceeds, with a warning.
	Enable bool `yaml:"control-enable"`

	// Interfaces the daemon listens on for control connections; the first
	// entry is the client's default target.
	Interfaces []string `yaml:"control-interface"`

	Port uint16 `yaml:"control-port"`

	ServerCertFile  string `yaml:"server-cert-file"`
	ServerKeyFile   string `yaml:"server-key-file"`
	ControlKeyFile  string `yaml:"control-key-file"`
	ControlCertFile string `yaml:"control-cert-file"`

	// ServerCertName is the name the server certificate must carry.
	ServerCertName string `yaml:"server-cert-name"`
}

// Default returns a config populated with the stock credential locations and
// control port.
func Default() *Config {
	return &Config{
		RemoteControl: RemoteControl{
			Port:            DefaultControlPort,
			ServerCertFile:  "/etc/resolverd/server.pem",
			ServerKeyFile:   "/etc/resolverd/server.key",
			ControlKeyFile:  "/etc/resolverd/control.key",
			ControlCertFile: "/etc/resolverd/control.pem",
			ServerCertName:  DefaultServerCertName,
		},
	}
}

// Load reads and parses the config file at path, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default().RemoteControl
	rc := &c.RemoteControl
	if rc.Port == 0 {
		rc.Port = def.Port
	}
	if rc.ServerCertFile == "" {
		rc.ServerCertFile = def.ServerCertFile
	}
	if rc.ServerKeyFile == "" {
		rc.ServerKeyFile = def.ServerKeyFile
	}
	if rc.ControlKeyFile == "" {
		rc.ControlKeyFile = def.ControlKeyFile
	}
	if rc.ControlCertFile == "" {
		rc.ControlCertFile = def.ControlCertFile
	}
	if rc.ServerCertName == "" {
		rc.ServerCertName = def.ServerCertName
	}
}

func (c *Config) validate() error {
	for i, ifc := range c.RemoteControl.Interfaces {
		if strings.TrimSpace(ifc) == "" {
			return fmt.Errorf("control-interface[%d] is empty", i)
		}
	}
	return nil
}
