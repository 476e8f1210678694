package viewer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Window.Width != 640 || config.Window.Height != 480 || config.Window.Title != "aseview" {
		t.Errorf("Expected a 640x480 aseview window, got %+v", config.Window)
	}
	if config.TPS != 60 || config.Scale != 4 || config.Dir != "." || config.Atlas.Strategy != "grid" {
		t.Errorf("Unexpected defaults: %+v", config)
	}
	if err := config.Validate(); err == nil {
		t.Error("Expected Validate to require a file")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yml")
	data := `window:
  title: hero
tps: 30
file: hero.aseprite
tag: walk
watch: true
atlas:
  strategy: skyline
  padding: 1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Window.Title != "hero" || config.Window.Width != 640 {
		t.Errorf("Expected title hero with default width, got %+v", config.Window)
	}
	if config.TPS != 30 || config.File != "hero.aseprite" || config.Tag != "walk" || !config.Watch {
		t.Errorf("Unexpected config: %+v", config)
	}
	if config.Atlas.Strategy != "skyline" || config.Atlas.Padding != 1 {
		t.Errorf("Unexpected atlas config: %+v", config.Atlas)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("window: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}

func TestAtlasOptions(t *testing.T) {
	if _, err := (AtlasConfig{Strategy: "skyline", Padding: 2}).Options(); err != nil {
		t.Errorf("Options failed: %v", err)
	}
	if _, err := (AtlasConfig{Strategy: "spiral"}).Options(); err == nil {
		t.Error("Expected an error for an unknown strategy")
	}
}
