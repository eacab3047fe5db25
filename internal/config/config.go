package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAPIBaseURL    = "https://sme0l3jfi5.execute-api.us-east-1.amazonaws.com/dev"
	developmentSecret    = "licitaciones-dev-secret"
	defaultHTTPPort      = 8080
	defaultPageSize      = 10
	defaultMaxPageSize   = 50
	defaultMapRenderer   = "vector"
	defaultSessionTTL    = 2 * time.Hour
	defaultMaxSessions   = 10000
	maxRasterScale       = 4
	defaultUpstreamLimit = 30 * time.Second
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ListingConfig struct {
	PageSize    int
	MaxPageSize int
}

type MapConfig struct {
	Renderer    string
	APIKey      string
	RasterScale int
}

type SessionConfig struct {
	Secret      string
	TTL         time.Duration
	MaxSessions int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	API         APIConfig
	Listing     ListingConfig
	Map         MapConfig
	Session     SessionConfig
	DB          DBConfig
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		API: APIConfig{
			BaseURL: v.GetString("API_BASE_URL"),
			Timeout: v.GetDuration("API_TIMEOUT"),
		},
		Listing: ListingConfig{
			PageSize:    v.GetInt("PAGE_SIZE"),
			MaxPageSize: v.GetInt("MAX_PAGE_SIZE"),
		},
		Map: MapConfig{
			Renderer:    strings.ToLower(strings.TrimSpace(v.GetString("MAP_RENDERER"))),
			APIKey:      v.GetString("MAPS_API_KEY"),
			RasterScale: v.GetInt("MAP_RASTER_SCALE"),
		},
		Session: SessionConfig{
			Secret:      v.GetString("SESSION_SECRET"),
			TTL:         v.GetDuration("SESSION_TTL"),
			MaxSessions: v.GetInt("SESSION_MAX"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultHTTPPort
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.API.BaseURL == "" {
		// Name used by the React build of the portal.
		cfg.API.BaseURL = v.GetString("REACT_APP_API_URL")
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultAPIBaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = defaultUpstreamLimit
	}
	if cfg.Listing.PageSize <= 0 {
		cfg.Listing.PageSize = defaultPageSize
	}
	if cfg.Listing.MaxPageSize <= 0 {
		cfg.Listing.MaxPageSize = defaultMaxPageSize
	}
	if cfg.Map.Renderer == "" {
		cfg.Map.Renderer = defaultMapRenderer
	}
	if cfg.Map.RasterScale <= 0 {
		cfg.Map.RasterScale = 2
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}
	if cfg.Session.MaxSessions <= 0 {
		cfg.Session.MaxSessions = defaultMaxSessions
	}
	if cfg.Session.Secret == "" && cfg.IsDevelopment() {
		cfg.Session.Secret = developmentSecret
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", cfg.API.BaseURL)
	}
	if cfg.Listing.PageSize > cfg.Listing.MaxPageSize {
		return fmt.Errorf("PAGE_SIZE (%d) exceeds MAX_PAGE_SIZE (%d)", cfg.Listing.PageSize, cfg.Listing.MaxPageSize)
	}
	switch cfg.Map.Renderer {
	case "vector", "provider", "raster":
	default:
		return fmt.Errorf("MAP_RENDERER must be vector, provider or raster, got %q", cfg.Map.Renderer)
	}
	if cfg.Map.RasterScale > maxRasterScale {
		return fmt.Errorf("MAP_RASTER_SCALE must be between 1 and %d, got %d", maxRasterScale, cfg.Map.RasterScale)
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
