package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
environment: test
ingest:
  data_dir: data
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("port default: got %d", c.Server.Port)
	}
	if c.Analysis.SamplingRate != 10 {
		t.Errorf("rate default: got %v", c.Analysis.SamplingRate)
	}
	if len(c.Analysis.Epochs) != 4 || c.Analysis.Epochs[3] != 10 {
		t.Errorf("epoch defaults: got %v", c.Analysis.Epochs)
	}
	if len(c.Analysis.Thresholds) != 2 || c.Analysis.Thresholds[1].Label != "High-speed" {
		t.Errorf("threshold defaults: got %v", c.Analysis.Thresholds)
	}
	if c.Cache.Backend != "memory" {
		t.Errorf("cache default: got %q", c.Cache.Backend)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing environment": "ingest:\n  data_dir: data\n",
		"bad cache backend":   "environment: test\ncache:\n  backend: disk\ningest:\n  data_dir: data\n",
		"missing data dir":    "environment: test\n",
		"inverted threshold": `
environment: test
ingest:
  data_dir: data
analysis:
  thresholds:
    - label: Broken
      min: 9
      max: 3
`,
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("WCSPULL_PORT", "9090")
	t.Setenv("WCSPULL_DATA_DIR", "/srv/gps")
	t.Setenv("WCSPULL_REDIS_ADDR", "redis.internal:6380")

	c, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Errorf("port override: got %d", c.Server.Port)
	}
	if c.Ingest.DataDir != "/srv/gps" {
		t.Errorf("data dir override: got %q", c.Ingest.DataDir)
	}
	if c.Redis.Host != "redis.internal" || c.Redis.Port != 6380 {
		t.Errorf("redis override: got %s:%d", c.Redis.Host, c.Redis.Port)
	}
}

func TestParams(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := c.Params()
	if err := p.Validate(); err != nil {
		t.Fatalf("default params should validate: %v", err)
	}
}
