// ABOUTME: YAML config loading for the austream binary
// ABOUTME: Reads austream.yaml into typed sections; flags override file values
package app

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the config file location. Empty disables file loading.
var ConfigPath = "austream.yaml"

var configData []byte

// Init reads the config file (missing file is fine) and sets up logging.
func Init() {
	if ConfigPath != "" {
		configData, _ = os.ReadFile(ConfigPath)
	}

	InitLogger()
}

// LoadConfig unmarshals the loaded config file into v. Each caller passes a
// struct with only the sections it cares about.
func LoadConfig(v any) {
	if configData == nil {
		return
	}
	if err := yaml.Unmarshal(configData, v); err != nil {
		Logger.Warn().Err(err).Msg("read config")
	}
}
