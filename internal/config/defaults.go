package config

import "github.com/nconklindev/xl2json/internal/converter"

const (
	defaultConfigPath = "~/.config/xl2json/config.toml"
	projectConfigName = "xl2json.toml"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Export: Export{
			Range:   converter.DefaultRange,
			Workers: converter.DefaultWorkers,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
