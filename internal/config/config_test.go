package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packhub.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Listen != ":8080" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
	if !strings.Contains(cfg.Fetch.URLTemplate, "{repo}") {
		t.Errorf("URLTemplate = %q, missing {repo} placeholder", cfg.Fetch.URLTemplate)
	}
	if cfg.Fetch.Timeout.Value() != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Fetch.Timeout.Value())
	}
	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Ops.MongoURI != "" {
		t.Errorf("MongoURI = %q, want empty (in-memory ops)", cfg.Ops.MongoURI)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
listen = ":9090"

[fetch]
timeout = "5s"

[cache]
backend = "redis"
prefix = "east:"

[cache.redis]
addr = "localhost:6379"
db = 2

[ops]
mongo_uri = "mongodb://localhost:27017"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Listen != ":9090" {
		t.Errorf("Listen = %q", cfg.Server.Listen)
	}
	if cfg.Fetch.Timeout.Value() != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Fetch.Timeout.Value())
	}
	// Unset fields keep their defaults.
	if !strings.Contains(cfg.Fetch.URLTemplate, "raw.githubusercontent.com") {
		t.Errorf("URLTemplate = %q, default lost", cfg.Fetch.URLTemplate)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.Redis.Addr != "localhost:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Prefix != "east:" {
		t.Errorf("Prefix = %q", cfg.Cache.Prefix)
	}
	if cfg.Ops.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q", cfg.Ops.MongoURI)
	}
	if cfg.Ops.MongoDatabase != "packhub" {
		t.Errorf("MongoDatabase = %q, default lost", cfg.Ops.MongoDatabase)
	}
}

func TestLoadNoneBackend(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"none\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("Backend = %q, want none", cfg.Cache.Backend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "[fetch]\ntimeout = \"soon\"\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unparsable duration")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown backend", "[cache]\nbackend = \"s3\"\n"},
		{"file backend without dir", "[cache]\nbackend = \"file\"\n"},
		{"redis backend without addr", "[cache]\nbackend = \"redis\"\n"},
		{"empty url template", "[fetch]\nurl_template = \"\"\n"},
		{"non-http url template", "[fetch]\nurl_template = \"ftp://host/{repo}\"\n"},
		{"template without placeholder", "[fetch]\nurl_template = \"https://host/manifest.yml\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
