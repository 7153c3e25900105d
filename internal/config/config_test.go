package config

import (
	"slices"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.HTTP.Port)
	}
	if !slices.Equal(cfg.CORS.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("unexpected default origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Catalog.Source != CatalogSourceCSV || cfg.Catalog.Path != "data/products.csv" {
		t.Errorf("unexpected catalog defaults: %+v", cfg.Catalog)
	}
	if cfg.Recommend.K != 3 || cfg.Recommend.Similarity != "eager" || cfg.Recommend.MaxHistory != 1000 {
		t.Errorf("unexpected recommend defaults: %+v", cfg.Recommend)
	}
	if cfg.Database.ReadinessTimeout != 10 || cfg.Database.PingTimeout != 2 {
		t.Errorf("unexpected database timeouts: %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestApplyDefaults_StoreSourceKeepsEmptyPath(t *testing.T) {
	cfg := Config{Catalog: CatalogConfig{Source: CatalogSourceStore}}
	cfg.ApplyDefaults()
	if cfg.Catalog.Path != "" {
		t.Errorf("expected empty path for store source, got %q", cfg.Catalog.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, "Port"},
		{"unknown catalog source", func(c *Config) { c.Catalog.Source = "s3" }, "Source"},
		{"unknown similarity", func(c *Config) { c.Recommend.Similarity = "approx" }, "Similarity"},
		{"negative k", func(c *Config) { c.Recommend.K = -1 }, "K"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "Level"},
		{"bad db addr", func(c *Config) { c.Database.Addrs = []string{"nohost"} }, "Addrs"},
		{"empty api key", func(c *Config) { c.Auth.APIKeys = []string{""} }, "APIKeys"},
		{"store without db", func(c *Config) { c.Catalog.Source = CatalogSourceStore }, "requires database.addrs"},
		{"cache without db", func(c *Config) { c.Cache.Enabled = true }, "cache.enabled"},
		{"wildcard with credentials", func(c *Config) {
			c.CORS.AllowedOrigins = []string{"*"}
			c.CORS.AllowCredentials = true
		}, "allow_credentials"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestValidate_StoreWithDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.Source = CatalogSourceStore
	cfg.Database.Addrs = []string{"localhost:6379"}
	cfg.Cache.Enabled = true

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("RECODEX_TEST_PORT", "9090")

	cfg, err := Parse([]byte(`
http:
  port: ${RECODEX_TEST_PORT}
recommend:
  similarity: ${RECODEX_TEST_MODE:-lazy}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Recommend.Similarity != "lazy" {
		t.Errorf("expected default similarity lazy, got %q", cfg.Recommend.Similarity)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.Source != CatalogSourceCSV {
		t.Errorf("expected csv source, got %q", cfg.Catalog.Source)
	}
	if cfg.Database.Enabled() {
		t.Error("local config must not require a database")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local, got %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RECODEX_SET", "value")

	tests := []struct {
		in, want string
	}{
		{"${RECODEX_SET}", "value"},
		{"${RECODEX_SET:-fallback}", "value"},
		{"${RECODEX_UNSET_VAR:-fallback}", "fallback"},
		{"${RECODEX_UNSET_VAR}", ""},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
