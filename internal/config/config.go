package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Master holds all configuration for the master server.
type Master struct {
	// Network
	MasterName  string `yaml:"master_name"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// JSON status snapshot
	StatusFile string `yaml:"status_file"`

	// Upgrade advisor
	LatestReleasedCSProtocol uint32 `yaml:"latest_released_cs_protocol"`
	LatestReleasedBuild      uint32 `yaml:"latest_released_build"`

	// Message of the day, общий и по номеру сборки клиента
	MOTD MOTDConfig `yaml:"motd"`

	// Administration
	Admins          []string `yaml:"admins"`
	HiddenAddresses []string `yaml:"hidden_addresses"`

	// Statistics store
	Stats StatsConfig `yaml:"stats"`

	// Forum credential store (авторизация по нику и паролю форума)
	Forum ForumConfig `yaml:"forum"`

	LogLevel string `yaml:"log_level"`
}

// MOTDConfig maps client build numbers to MOTD strings.
type MOTDConfig struct {
	Default string            `yaml:"default"`
	ByBuild map[uint32]string `yaml:"by_build"`
}

// MessageFor returns the MOTD for a client build, falling back to Default.
func (m MOTDConfig) MessageFor(build uint32) string {
	if msg, ok := m.ByBuild[build]; ok {
		return msg
	}
	return m.Default
}

// StatsConfig selects the statistics backend.
type StatsConfig struct {
	Driver   string         `yaml:"driver"` // "sqlite" или "postgres"
	File     string         `yaml:"file"`   // путь к файлу sqlite
	Database DatabaseConfig `yaml:"database"`
}

// ForumConfig holds the forum credential database parameters.
// Пустой Host означает, что проверка паролей не настроена.
type ForumConfig struct {
	Database    DatabaseConfig `yaml:"database"`
	TablePrefix string         `yaml:"table_prefix"`
}

// Enabled reports whether a forum credential database is configured.
func (f ForumConfig) Enabled() bool {
	return f.Database.Host != ""
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultMaster returns Master config with sensible defaults.
func DefaultMaster() Master {
	return Master{
		MasterName:  "Master Server",
		BindAddress: "0.0.0.0",
		Port:        25955,
		StatusFile:  "status.json",
		MOTD: MOTDConfig{
			Default: "Welcome to the master server!",
		},
		Stats: StatsConfig{
			Driver: "sqlite",
			File:   "stats.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "master",
				Password: "master",
				DBName:   "master",
				SSLMode:  "disable",
			},
		},
		LogLevel: "info",
	}
}

// LoadMaster loads master server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadMaster(path string) (Master, error) {
	cfg := DefaultMaster()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
