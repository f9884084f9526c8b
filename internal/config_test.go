package internal

import (
	"slices"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/coursebook/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.App.HTTP.Port = 70000 },
			wantErr: "app:",
		},
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Content.Source = "ftp" },
			wantErr: "content:",
		},
		{
			name: "http source needs base url",
			mutate: func(c *Config) {
				c.Content.Source = SourceHTTP
				c.Content.BaseURL = ""
			},
			wantErr: "BaseURL",
		},
		{
			name: "http source rejects non-http url",
			mutate: func(c *Config) {
				c.Content.Source = SourceHTTP
				c.Content.BaseURL = "file:///srv/data"
			},
			wantErr: "http or https",
		},
		{
			name: "http source with url",
			mutate: func(c *Config) {
				c.Content.Source = SourceHTTP
				c.Content.BaseURL = "https://cdn.example.com/data"
				c.Content.Dir = ""
			},
		},
		{
			name:    "dir source needs dir",
			mutate:  func(c *Config) { c.Content.Dir = "" },
			wantErr: "Dir",
		},
		{
			name:    "no sets",
			mutate:  func(c *Config) { c.Content.Sets = nil },
			wantErr: "Sets",
		},
		{
			name:    "blank set name",
			mutate:  func(c *Config) { c.Content.Sets = []string{"react.json", ""} },
			wantErr: "Sets",
		},
		{
			name:    "overlay equals base",
			mutate:  func(c *Config) { c.Content.OverlayLanguage = c.Content.BaseLanguage },
			wantErr: "must differ",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Content.Timeout = -time.Second },
			wantErr: "Timeout",
		},
		{
			name:    "unknown state driver",
			mutate:  func(c *Config) { c.State.Driver = "postgres" },
			wantErr: "state:",
		},
		{
			name:    "sqlite needs path",
			mutate:  func(c *Config) { c.State.SQLite.Path = "" },
			wantErr: "Path",
		},
		{
			name: "redis needs url",
			mutate: func(c *Config) {
				c.State.Driver = StateDriverRedis
				c.State.Redis.URL = ""
			},
			wantErr: "URL",
		},
		{
			name: "redis bad url",
			mutate: func(c *Config) {
				c.State.Driver = StateDriverRedis
				c.State.Redis.URL = "http://localhost:6379"
			},
			wantErr: "URL",
		},
		{
			name: "redis ok without sqlite path",
			mutate: func(c *Config) {
				c.State.Driver = StateDriverRedis
				c.State.Redis.URL = "redis://localhost:6379/0"
				c.State.SQLite.Path = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	c := HTTPConfig{Port: 9090}
	if got := c.Address(); got != ":9090" {
		t.Errorf("address = %q, want :9090", got)
	}
}

func TestSampleConfig_Loads(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load("../config/config.yaml", cfg); err != nil {
		t.Fatalf("sample config: %v", err)
	}
	want := []string{"spring-boot.json", "react.json", "javascript.json", "core-java.json"}
	if !slices.Equal(cfg.Content.Sets, want) {
		t.Errorf("sample sets = %v, want %v", cfg.Content.Sets, want)
	}
	if !slices.Equal(NewDefaultConfig().Content.Sets, want) {
		t.Errorf("default sets = %v, want %v", NewDefaultConfig().Content.Sets, want)
	}
}
