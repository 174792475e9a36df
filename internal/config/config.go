package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"bistro/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	CMS        CMSConfig        `yaml:"cms"`
	Redis      RedisConfig      `yaml:"redis"`
	API        APIConfig        `yaml:"api"`
	Session    SessionConfig    `yaml:"session"`
	Auth       AuthConfig       `yaml:"auth"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Menu       MenuConfig       `yaml:"menu"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// CMSConfig описывает подключение к headless CMS с меню и отзывами.
type CMSConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	CacheTTLSeconds  int    `yaml:"cache_ttl_seconds"`
	PublicationState string `yaml:"publication_state"`
	// Учётные данные менеджера для cmd/manager и скрипта заполнения меню.
	Identifier string `yaml:"identifier"`
	Password   string `yaml:"password"`
}

func (c CMSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c CMSConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type SessionConfig struct {
	IdleTTLSeconds       int `yaml:"idle_ttl_seconds"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLSeconds) * time.Second
}

func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// AuthConfig ограничивает попытки входа менеджера.
type AuthConfig struct {
	LoginAttempts      int `yaml:"login_attempts"`
	LoginWindowSeconds int `yaml:"login_window_seconds"`
}

func (c AuthConfig) LoginWindow() time.Duration {
	return time.Duration(c.LoginWindowSeconds) * time.Second
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MenuConfig struct {
	// Path файл статического меню (плитки категорий и позиции).
	Path                   string            `yaml:"path"`
	RefreshIntervalSeconds int               `yaml:"refresh_interval_seconds"`
	Categories             []models.Category `yaml:"categories"`
}

func (c MenuConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.CMS.BaseURL) == "" {
		return errors.New("cms base_url is required")
	}
	u, err := url.Parse(c.CMS.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("cms base_url %q is not an absolute URL", c.CMS.BaseURL)
	}
	if c.API.RateLimit.RPS < 0 {
		return errors.New("api rate_limit rps must not be negative")
	}
	return ValidateCategories(c.Menu.Categories)
}

// ValidateCategories проверяет, что у плиток категорий уникальные непустые названия.
func ValidateCategories(categories []models.Category) error {
	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return errors.New("category with empty name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate category found: %s", name)
		}
		seen[name] = true
	}
	return nil
}

// DefaultCategories плитки экрана выбора меню.
func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: models.CategoryBreakfast, Subtitle: "Start your day right"},
		{Name: models.CategoryLunch, Subtitle: "Midday favourites"},
		{Name: models.CategoryDinner, Subtitle: "Evening plates"},
		{Name: models.CategoryCoffee, Subtitle: "Hot and cold drinks"},
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "bistro"
	}
	c.CMS.BaseURL = strings.TrimRight(c.CMS.BaseURL, "/")
	if c.CMS.TimeoutSeconds == 0 {
		c.CMS.TimeoutSeconds = 10
	}
	if c.CMS.CacheTTLSeconds == 0 {
		c.CMS.CacheTTLSeconds = models.DefaultCacheTTL
	}
	if c.CMS.PublicationState == "" {
		c.CMS.PublicationState = "preview"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "bistro"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Session.IdleTTLSeconds == 0 {
		c.Session.IdleTTLSeconds = models.DefaultSessionIdleTTL
	}
	if c.Session.SweepIntervalSeconds == 0 {
		c.Session.SweepIntervalSeconds = models.DefaultSweepInterval
	}
	if c.Auth.LoginAttempts == 0 {
		c.Auth.LoginAttempts = models.LoginAttempts
	}
	if c.Auth.LoginWindowSeconds == 0 {
		c.Auth.LoginWindowSeconds = models.LoginWindow
	}
	if c.Menu.RefreshIntervalSeconds == 0 {
		c.Menu.RefreshIntervalSeconds = models.DefaultMenuRefreshInterval
	}
	if len(c.Menu.Categories) == 0 {
		c.Menu.Categories = DefaultCategories()
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
