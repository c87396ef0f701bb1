// Package config loads tool configuration from a JSON file backend with
// PRIOTRACK_* environment overrides. Every key is described once in the
// spec table in keys.go; the CLI's `config show` and `config set` commands
// operate on the same table.
package config

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Time    TimeConfig
	Input   InputConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type TimeConfig struct {
	// Zone is the canonical timezone every timestamp is normalized to.
	Zone string
}

type InputConfig struct {
	// DurationStep is the granularity (in hours) duration inputs snap to
	// on the client. The engine itself only enforces non-negativity.
	DurationStep float64
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Time: TimeConfig{
			Zone: "Asia/Kolkata",
		},
		Input: InputConfig{
			DurationStep: 0.25,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/priotrack/config.json, then applies PRIOTRACK_*
// environment overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
