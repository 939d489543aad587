package config

import (
	"fmt"
	"strconv"
	"testing"
)

// memBackend is an in-memory ConfigBackend for tests.
type memBackend struct {
	data map[string]string
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]string)}
}

func (b *memBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (b *memBackend) SetString(key, val string) error {
	b.data[key] = val
	return nil
}

func (b *memBackend) SetInt(key string, val int) error {
	b.data[key] = strconv.Itoa(val)
	return nil
}

func (b *memBackend) Delete(key string) error {
	delete(b.data, key)
	return nil
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	if cfg.Notes.Folder != "" {
		t.Errorf("default folder should be empty, got %q", cfg.Notes.Folder)
	}
	if cfg.Notes.ScriptTimeoutSeconds != 30 {
		t.Errorf("default script timeout = %d, want 30", cfg.Notes.ScriptTimeoutSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("default data dir should not be empty")
	}
}

func TestLoad_BackendValues(t *testing.T) {
	b := newMemBackend()
	b.data["notes.folder"] = "Journal"
	b.data["notes.script_timeout_seconds"] = "60"
	b.data["log.level"] = "debug"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	if cfg.Notes.Folder != "Journal" {
		t.Errorf("folder = %q, want Journal", cfg.Notes.Folder)
	}
	if cfg.Notes.ScriptTimeoutSeconds != 60 {
		t.Errorf("script timeout = %d, want 60", cfg.Notes.ScriptTimeoutSeconds)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	b := newMemBackend()
	b.data["notes.folder"] = "FromBackend"
	b.data["notes.script_timeout_seconds"] = "60"

	t.Setenv("DAYONE2NOTES_NOTES_FOLDER", "FromEnv")
	t.Setenv("DAYONE2NOTES_SCRIPT_TIMEOUT_SECONDS", "90")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	if cfg.Notes.Folder != "FromEnv" {
		t.Errorf("env should win over backend: folder = %q", cfg.Notes.Folder)
	}
	if cfg.Notes.ScriptTimeoutSeconds != 90 {
		t.Errorf("env should win over backend: timeout = %d", cfg.Notes.ScriptTimeoutSeconds)
	}
}

func TestLoad_InvalidEnvIntKeepsPrevious(t *testing.T) {
	b := newMemBackend()
	b.data["notes.script_timeout_seconds"] = "45"

	t.Setenv("DAYONE2NOTES_SCRIPT_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}
	if cfg.Notes.ScriptTimeoutSeconds != 45 {
		t.Errorf("invalid env int should be ignored, got %d", cfg.Notes.ScriptTimeoutSeconds)
	}
}

func TestScriptTimeout(t *testing.T) {
	nc := NotesConfig{ScriptTimeoutSeconds: 30}
	if got := nc.ScriptTimeout().Seconds(); got != 30 {
		t.Errorf("ScriptTimeout = %vs, want 30s", got)
	}
}

func TestShowAll_CoversEverySpec(t *testing.T) {
	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith failed: %v", err)
	}

	infos := ShowAll(cfg)
	if len(infos) != len(specs) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(specs))
	}

	seen := make(map[string]bool)
	for _, info := range infos {
		seen[info.Key] = true
		if info.EnvVar == "" {
			t.Errorf("key %s has no env var", info.Key)
		}
	}
	for _, key := range ValidKeys() {
		if !seen[key] {
			t.Errorf("ValidKeys lists %s but ShowAll does not", key)
		}
	}
}
