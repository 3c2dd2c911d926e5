package controller

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/fiberalign/driver"
	"github.com/calvinmclean/fiberalign/driver/apt"
	"github.com/calvinmclean/fiberalign/driver/sim"
	"gopkg.in/yaml.v3"
)

const (
	DriverAPT = "apt"
	DriverSim = "sim"
)

// Config selects and configures the driver. Fields are strings so they can be bound directly to UI entries
type Config struct {
	Driver      string `yaml:"driver"`
	BaudRate    string `yaml:"baud_rate"`
	MaxVoltage  string `yaml:"max_voltage"`
	StepSize    string `yaml:"step_size"`
	ReadTimeout string `yaml:"read_timeout"`
	// SimSerials is a comma-separated list of serial numbers for the simulated driver
	SimSerials string `yaml:"sim_serials"`
}

// DefaultConfig talks to real KPZ101 cubes
func DefaultConfig() Config {
	return Config{
		Driver:      DriverAPT,
		BaudRate:    "115200",
		MaxVoltage:  "75",
		StepSize:    "1",
		ReadTimeout: "500ms",
		SimSerials:  "29500001,29500002,29500003,29500004,29500005,29500006",
	}
}

// LoadConfigFile overlays the YAML file onto cfg. Keys missing from the file keep their current values
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays FIBERALIGN_* environment variables onto cfg
func (cfg *Config) ApplyEnv() {
	for env, field := range map[string]*string{
		"FIBERALIGN_DRIVER":       &cfg.Driver,
		"FIBERALIGN_BAUD_RATE":    &cfg.BaudRate,
		"FIBERALIGN_MAX_VOLTAGE":  &cfg.MaxVoltage,
		"FIBERALIGN_STEP_SIZE":    &cfg.StepSize,
		"FIBERALIGN_READ_TIMEOUT": &cfg.ReadTimeout,
		"FIBERALIGN_SIM_SERIALS":  &cfg.SimSerials,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*field = v
		}
	}
}

// NewDriver builds the configured driver
func (cfg Config) NewDriver(logger *slog.Logger) (driver.Driver, error) {
	maxVoltage, err := strconv.ParseFloat(cfg.MaxVoltage, 64)
	if err != nil || maxVoltage <= 0 {
		return nil, fmt.Errorf("invalid max voltage: %q", cfg.MaxVoltage)
	}
	step, err := strconv.ParseFloat(cfg.StepSize, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid step size: %q", cfg.StepSize)
	}
	if err := driver.CheckStep(step); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverSim:
		d := sim.New()
		for _, serial := range strings.Split(cfg.SimSerials, ",") {
			serial = strings.TrimSpace(serial)
			if serial == "" {
				continue
			}
			d.Add(sim.DeviceSpec{Serial: serial, StepSize: step, MaxVoltage: maxVoltage})
		}
		return d, nil

	case DriverAPT, "":
		baudRate, err := strconv.Atoi(cfg.BaudRate)
		if err != nil || baudRate <= 0 {
			return nil, fmt.Errorf("invalid baud rate: %q", cfg.BaudRate)
		}
		readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid read timeout: %w", err)
		}

		aptCfg := apt.DefaultConfig()
		aptCfg.BaudRate = baudRate
		aptCfg.MaxVoltage = maxVoltage
		aptCfg.StepSize = step
		aptCfg.ReadTimeout = readTimeout
		return apt.New(aptCfg, logger), nil

	default:
		return nil, fmt.Errorf("unknown driver: %q", cfg.Driver)
	}
}

// NewFromEnv creates a Controller from the default config with environment overrides
func NewFromEnv(logger *slog.Logger) (*Controller, error) {
	cfg := DefaultConfig()
	cfg.ApplyEnv()

	drv, err := cfg.NewDriver(logger)
	if err != nil {
		return nil, err
	}
	return New(drv, logger), nil
}
