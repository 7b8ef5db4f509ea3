package params

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != Config {
		t.Fatalf("empty path should return defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "hidden_size: 32\nepochs: 2\nmodel_path: out/model.gob\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HiddenSize != 32 || cfg.Epochs != 2 || cfg.ModelPath != "out/model.gob" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.EmbedDim != Config.EmbedDim || cfg.Window != 10 {
		t.Fatalf("unset keys should keep defaults: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsZeroSizes(t *testing.T) {
	cfg := Config
	cfg.BatchSize = 0
	cfg.VocabSize = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}

	cfg = Config
	cfg.Workers = -2
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "workers") {
		t.Fatalf("negative workers: got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MODEL_PATH", "/srv/model.gob")
	t.Setenv("PORT", "9090")
	cfg := Config
	ApplyEnv(&cfg)
	if cfg.ModelPath != "/srv/model.gob" {
		t.Fatalf("ModelPath = %q", cfg.ModelPath)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.VocabPath != Config.VocabPath {
		t.Fatalf("VocabPath changed without env: %q", cfg.VocabPath)
	}
}
