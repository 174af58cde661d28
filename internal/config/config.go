package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig `yaml:"server"`
	Welcome string       `yaml:"welcome"`
	Detect  DetectConfig `yaml:"detect"`
	IPC     IPCConfig    `yaml:"ipc"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AuthToken      string   `yaml:"auth_token"`
}

type DetectConfig struct {
	PollInterval Duration     `yaml:"poll_interval"`
	Detectables  []Detectable `yaml:"detectables"`
}

// Detectable describes one process the watcher announces when it is seen
// running. Executables are matched case-insensitively against the process
// image name.
type Detectable struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Executables []string `yaml:"executables"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"`
}

// Duration accepts both Go duration strings ("5s") and raw nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value at line %d", value.Line)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 6473,
			Host: "127.0.0.1",
		},
		Welcome: `{"cmd":"DISPATCH","evt":"READY"}`,
		Detect: DetectConfig{
			PollInterval: Duration(5 * time.Second),
		},
	}
}

// Load reads the YAML config at path on top of the defaults. A missing
// file is not an error: the bridge runs fine with pure defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
