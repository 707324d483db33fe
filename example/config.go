package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DemoConfiguration описывает конфигурацию демонстрационных команд.
// Значения берутся из файла YAML, затем перекрываются переменными окружения.
type DemoConfiguration struct {
	Endpoint struct {
		Host string `yaml:"host" env:"RETCP_HOST"`
		Port int    `yaml:"port" env:"RETCP_PORT"`
	} `yaml:"endpoint"`

	Session struct {
		ReconnectInterval string `yaml:"reconnect_interval" env:"RETCP_RECONNECT_INTERVAL"`
		ConnectTimeout    string `yaml:"connect_timeout" env:"RETCP_CONNECT_TIMEOUT"`
		BufferSize        int    `yaml:"buffer_size" env:"RETCP_BUFFER_SIZE"`
	} `yaml:"session"`

	Server struct {
		MaxConnections int `yaml:"max_connections" env:"RETCP_MAX_CONNECTIONS"`
	} `yaml:"server"`
}

// DefaultDemoConfiguration возвращает конфигурацию по умолчанию.
func DefaultDemoConfiguration() *DemoConfiguration {
	config := &DemoConfiguration{}

	config.Endpoint.Host = "localhost"
	config.Endpoint.Port = 4782

	config.Session.ReconnectInterval = "5s"
	config.Session.ConnectTimeout = "3s"
	config.Session.BufferSize = 4096

	config.Server.MaxConnections = 100

	return config
}

// LoadConfiguration загружает конфигурацию: значения по умолчанию,
// затем YAML файл (если указан), затем переменные окружения.
func LoadConfiguration(configPath string) (*DemoConfiguration, error) {
	config := DefaultDemoConfiguration()

	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile загружает конфигурацию из YAML файла.
func loadFromFile(config *DemoConfiguration, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// loadFromEnvironment перекрывает конфигурацию переменными окружения.
func loadFromEnvironment(config *DemoConfiguration) {
	if host := os.Getenv("RETCP_HOST"); host != "" {
		config.Endpoint.Host = host
	}
	if portStr := os.Getenv("RETCP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Endpoint.Port = port
		}
	}
	if interval := os.Getenv("RETCP_RECONNECT_INTERVAL"); interval != "" {
		config.Session.ReconnectInterval = interval
	}
	if timeout := os.Getenv("RETCP_CONNECT_TIMEOUT"); timeout != "" {
		config.Session.ConnectTimeout = timeout
	}
	if sizeStr := os.Getenv("RETCP_BUFFER_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil {
			config.Session.BufferSize = size
		}
	}
	if maxStr := os.Getenv("RETCP_MAX_CONNECTIONS"); maxStr != "" {
		if maxConn, err := strconv.Atoi(maxStr); err == nil {
			config.Server.MaxConnections = maxConn
		}
	}
}

// Validate проверяет корректность конфигурации.
func (c *DemoConfiguration) Validate() error {
	if c.Endpoint.Host == "" {
		return fmt.Errorf("endpoint host cannot be empty")
	}
	if c.Endpoint.Port < 1 || c.Endpoint.Port > 65535 {
		return fmt.Errorf("endpoint port must be in range [1, 65535], got %d", c.Endpoint.Port)
	}
	if _, err := time.ParseDuration(c.Session.ReconnectInterval); err != nil {
		return fmt.Errorf("invalid reconnect interval format: %w", err)
	}
	if _, err := time.ParseDuration(c.Session.ConnectTimeout); err != nil {
		return fmt.Errorf("invalid connect timeout format: %w", err)
	}
	if c.Session.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("max connections cannot be negative")
	}
	return nil
}

// GetReconnectInterval возвращает разобранную паузу переподключения.
func (c *DemoConfiguration) GetReconnectInterval() time.Duration {
	duration, _ := time.ParseDuration(c.Session.ReconnectInterval)
	return duration
}

// GetConnectTimeout возвращает разобранный таймаут подключения.
func (c *DemoConfiguration) GetConnectTimeout() time.Duration {
	duration, _ := time.ParseDuration(c.Session.ConnectTimeout)
	return duration
}

// Address возвращает адрес endpoint в формате "host:port".
func (c *DemoConfiguration) Address() string {
	return fmt.Sprintf("%s:%d", c.Endpoint.Host, c.Endpoint.Port)
}
