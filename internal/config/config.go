package config

import "time"

type Config struct {
	Notes   NotesConfig
	Storage StorageConfig
	Log     LogConfig
}

type NotesConfig struct {
	// Folder is the default target folder in Apple Notes; empty means the
	// app's default folder. The --folder flag overrides it per run.
	Folder string
	// ScriptTimeoutSeconds bounds each osascript invocation.
	ScriptTimeoutSeconds int
}

type StorageConfig struct {
	// DataDir holds the run log database.
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Notes: NotesConfig{
			ScriptTimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ScriptTimeout returns the configured osascript timeout as a duration.
func (c NotesConfig) ScriptTimeout() time.Duration {
	return time.Duration(c.ScriptTimeoutSeconds) * time.Second
}

// Load reads configuration from the platform-native backend and environment
// variables.
//
// On macOS the backend is UserDefaults (domain: com.dayone2notes.app).
// On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/dayone2notes/config.json.
//
// Environment variables (DAYONE2NOTES_*) override backend values on all
// platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
