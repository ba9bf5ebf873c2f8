package configuration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output string `yaml:"output" toml:"output"`
}

type PrinterConfig struct {
	Address           string        `yaml:"address" toml:"address" validate:"required,hostname_port"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout" toml:"connection_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gt=0"`
	ReadBufferSize    int           `yaml:"read_buffer_size" toml:"read_buffer_size" validate:"gt=0"`
	RetryAttempts     int           `yaml:"retry_attempts" toml:"retry_attempts" validate:"gte=0"`
}

type SimulatorConfig struct {
	Address                 string            `yaml:"address" toml:"address" validate:"required,hostname_port"`
	MaxConnections          int               `yaml:"max_connections" toml:"max_connections" validate:"gt=0"`
	IdleTimeout             time.Duration     `yaml:"idle_timeout" toml:"idle_timeout" validate:"gt=0"`
	GracefulShutdownTimeout time.Duration     `yaml:"graceful_shutdown_timeout" toml:"graceful_shutdown_timeout" validate:"gt=0"`
	Variables               map[string]string `yaml:"variables" toml:"variables"`
}

type Config struct {
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Printer   PrinterConfig   `yaml:"printer" toml:"printer"`
	Simulator SimulatorConfig `yaml:"simulator" toml:"simulator"`
}

var (
	ErrConfigFileMissing = errors.New("no config file path provided")
	ErrUnsupportedFormat = errors.New("unsupported config file format")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig matches what a printer listening on the factory raw port expects.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Output: "stderr",
		},
		Printer: PrinterConfig{
			Address:           "192.168.0.40:9100",
			ConnectionTimeout: 5 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      5 * time.Second,
			ReadBufferSize:    1024,
		},
		Simulator: SimulatorConfig{
			Address:                 "127.0.0.1:9100",
			MaxConnections:          16,
			IdleTimeout:             60 * time.Second,
			GracefulShutdownTimeout: 5 * time.Second,
			Variables:               map[string]string{},
		},
	}
}

// NewConfig loads the file named by CONFIG_FILEPATH.
func NewConfig() (*Config, error) {
	configFilePath := os.Getenv("CONFIG_FILEPATH")
	if configFilePath == "" {
		return nil, ErrConfigFileMissing
	}
	return LoadConfig(configFilePath)
}

// LoadConfig reads a YAML or TOML file on top of DefaultConfig and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".toml":
		err = toml.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
