package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}
	if cfg.Environment != "development" || cfg.HTTP.Port != 8080 {
		t.Fatalf("env=%s port=%d", cfg.Environment, cfg.HTTP.Port)
	}
	if cfg.API.BaseURL != defaultAPIBaseURL || cfg.API.Timeout != 30*time.Second {
		t.Fatalf("api=%+v", cfg.API)
	}
	if cfg.Listing.PageSize != 10 || cfg.Listing.MaxPageSize != 50 {
		t.Fatalf("listing=%+v", cfg.Listing)
	}
	if cfg.Map.Renderer != "vector" || cfg.Session.TTL != 2*time.Hour || cfg.Session.Secret == "" || cfg.Session.MaxSessions != 10000 {
		t.Fatalf("map=%+v session=%+v", cfg.Map, cfg.Session)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "*" {
		t.Fatalf("origins=%v", cfg.HTTP.AllowedOrigins)
	}
}

func TestFromViper_ReactAPIURLFallback(t *testing.T) {
	v := viper.New()
	v.Set("REACT_APP_API_URL", "http://localhost:3001/api/")
	cfg, err := fromViper(v)
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3001/api" {
		t.Fatalf("BaseURL=%s", cfg.API.BaseURL)
	}
}

func TestFromViper_Validation(t *testing.T) {
	tcs := []struct {
		name string
		set  map[string]interface{}
		want string
	}{
		{"secret outside development", map[string]interface{}{"APP_ENV": "production"}, "SESSION_SECRET"},
		{"bad renderer", map[string]interface{}{"MAP_RENDERER": "canvas"}, "MAP_RENDERER"},
		{"page size", map[string]interface{}{"PAGE_SIZE": 80}, "PAGE_SIZE"},
		{"base url", map[string]interface{}{"API_BASE_URL": "ftp://x"}, "API_BASE_URL"},
		{"raster scale", map[string]interface{}{"MAP_RASTER_SCALE": 50}, "MAP_RASTER_SCALE"},
	}
	for _, tc := range tcs {
		v := viper.New()
		for k, val := range tc.set {
			v.Set(k, val)
		}
		_, err := fromViper(v)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err=%v; want mention of %s", tc.name, err, tc.want)
		}
	}
}

func TestParseList(t *testing.T) {
	got := parseList(" https://a.cl, ,https://b.cl ")
	if len(got) != 2 || got[0] != "https://a.cl" || got[1] != "https://b.cl" {
		t.Fatalf("parseList=%v", got)
	}
}
