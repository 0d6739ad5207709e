package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Repos = map[string]Repo{
		"acme/widgets": {
			Alias:              "w",
			Machine:            "premiumLinux64gb",
			DefaultPermissions: boolPtr(true),
			SSHRetry:           boolPtr(true),
		},
		"acme/api": {Alias: "api", Branch: "develop"},
	}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Defaults.Machine != "basicLinux32gb" {
		t.Errorf("Default machine = %q, want basicLinux32gb", cfg.Defaults.Machine)
	}
	if cfg.Defaults.Location != "EuropeWest" {
		t.Errorf("Default location = %q, want EuropeWest", cfg.Defaults.Location)
	}
	if cfg.Defaults.Visibility != "private" {
		t.Errorf("Default visibility = %q, want private", cfg.Defaults.Visibility)
	}
	if cfg.Defaults.AutoConfirm {
		t.Error("Default auto_confirm should be false")
	}
	if !cfg.Terminal.SetTabTitle {
		t.Error("Default set_tab_title should be true")
	}
	if cfg.IdleTimeout() != 30*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 30m", cfg.IdleTimeout())
	}
}

func TestResolveAlias(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		alias string
		want  string
	}{
		{"w", "acme/widgets"},
		{"api", "acme/api"},
		{"unknown", "unknown"},
		{"owner/repo", "owner/repo"},
	}

	for _, tt := range tests {
		got := cfg.ResolveAlias(tt.alias)
		if got != tt.want {
			t.Errorf("ResolveAlias(%q) = %q, want %q", tt.alias, got, tt.want)
		}
	}
}

func TestEffectiveSettings(t *testing.T) {
	cfg := testConfig()

	t.Run("GetEffectiveMachine", func(t *testing.T) {
		if got := cfg.GetEffectiveMachine("acme/widgets"); got != "premiumLinux64gb" {
			t.Errorf("GetEffectiveMachine(acme/widgets) = %q, want premiumLinux64gb", got)
		}
		if got := cfg.GetEffectiveMachine("acme/api"); got != "basicLinux32gb" {
			t.Errorf("GetEffectiveMachine(acme/api) = %q, want basicLinux32gb", got)
		}
	})

	t.Run("GetEffectiveBranch", func(t *testing.T) {
		if got := cfg.GetEffectiveBranch("acme/api"); got != "develop" {
			t.Errorf("GetEffectiveBranch(acme/api) = %q, want develop", got)
		}
		if got := cfg.GetEffectiveBranch("unknown/repo"); got != "" {
			t.Errorf("GetEffectiveBranch(unknown/repo) = %q, want empty", got)
		}
	})

	t.Run("GetEffectiveDefaultPermissions", func(t *testing.T) {
		if !cfg.GetEffectiveDefaultPermissions("acme/widgets") {
			t.Error("GetEffectiveDefaultPermissions(acme/widgets) = false, want true")
		}
		if cfg.GetEffectiveDefaultPermissions("acme/api") {
			t.Error("GetEffectiveDefaultPermissions(acme/api) = true, want false")
		}
	})

	t.Run("GetEffectiveSSHRetry", func(t *testing.T) {
		if !cfg.GetEffectiveSSHRetry("acme/widgets") {
			t.Error("GetEffectiveSSHRetry(acme/widgets) = false, want true")
		}
		if cfg.GetEffectiveSSHRetry("unknown/repo") {
			t.Error("GetEffectiveSSHRetry(unknown/repo) = true, want false")
		}
	})
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Defaults.Machine != "basicLinux32gb" {
		t.Errorf("defaults.machine = %q, want basicLinux32gb", cfg.Defaults.Machine)
	}
	if cfg.Repos == nil {
		t.Error("Repos should be an empty map, got nil")
	}
}

func TestLoadSave(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := testConfig()
	cfg.Defaults.Machine = "standardLinux32gb"
	cfg.Repos["acme/site.io"] = Repo{Alias: "site"}
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	configFile := filepath.Join(tmpDir, "gh-csm", "config.yaml")
	if _, err := os.Stat(configFile); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}

	cfg2, err := Load("")
	if err != nil {
		t.Fatalf("Load() after Save failed: %v", err)
	}
	if cfg2.Defaults.Machine != "standardLinux32gb" {
		t.Errorf("defaults.machine = %q, want standardLinux32gb", cfg2.Defaults.Machine)
	}
	if got := cfg2.ResolveAlias("site"); got != "acme/site.io" {
		t.Errorf("ResolveAlias(site) = %q, want acme/site.io", got)
	}
	if !cfg2.GetEffectiveSSHRetry("acme/widgets") {
		t.Error("ssh_retry override lost after round trip")
	}
}

func TestLoadMixedCaseRepoKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "repos:\n  Acme/Widgets:\n    alias: w\n    branch: trunk\n    machine: premiumLinux64gb\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	for _, repo := range []string{"Acme/Widgets", "acme/widgets", "ACME/WIDGETS"} {
		if got := cfg.GetEffectiveBranch(repo); got != "trunk" {
			t.Errorf("GetEffectiveBranch(%q) = %q, want trunk", repo, got)
		}
		if got := cfg.GetEffectiveMachine(repo); got != "premiumLinux64gb" {
			t.Errorf("GetEffectiveMachine(%q) = %q, want premiumLinux64gb", repo, got)
		}
	}

	// settings are saved with the loaded keys and must still match
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() after Save failed: %v", err)
	}
	if got := cfg.GetEffectiveBranch("Acme/Widgets"); got != "trunk" {
		t.Errorf("GetEffectiveBranch after Save = %q, want trunk", got)
	}
	if got := cfg.ResolveAlias("w"); !strings.EqualFold(got, "Acme/Widgets") {
		t.Errorf("ResolveAlias(w) = %q, want acme/widgets", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "defaults:\n  machine: largeLinux128gb\nhooks:\n  post_create:\n    - echo created\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Defaults.Machine != "largeLinux128gb" {
		t.Errorf("defaults.machine = %q, want largeLinux128gb", cfg.Defaults.Machine)
	}
	if cfg.Defaults.Location != "EuropeWest" {
		t.Errorf("defaults.location = %q, want EuropeWest", cfg.Defaults.Location)
	}
	if len(cfg.Hooks.PostCreate) != 1 || cfg.Hooks.PostCreate[0] != "echo created" {
		t.Errorf("hooks.post_create = %v", cfg.Hooks.PostCreate)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CSM_DEFAULTS_MACHINE", "premiumLinux64gb")
	t.Setenv("CSM_SSH_RETRY", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Defaults.Machine != "premiumLinux64gb" {
		t.Errorf("defaults.machine = %q, want premiumLinux64gb", cfg.Defaults.Machine)
	}
	if !cfg.SSH.Retry {
		t.Error("ssh.retry = false, want true from environment")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("defaults: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	for _, want := range []string{"machine: basicLinux32gb", "idle_timeout: 30", "picker: auto"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, data)
		}
	}
}
