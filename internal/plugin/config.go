package plugin

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tasknest/tasknest/internal/config"
)

// ConfigDir returns the configuration directory for a plugin.
func ConfigDir(pluginName string) string {
	return filepath.Join(config.ConfigHome(), "plugins", pluginName)
}

// LoadConfigObject loads a plugin configuration object, merging the
// stored values over the defaults. Any failure (missing file,
// unreadable file, malformed content) leaves the defaults in place; a
// plugin always gets a usable configuration back.
func LoadConfigObject(pluginName, filename string, defaults map[string]interface{}) map[string]interface{} {
	cfg := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		cfg[k] = v
	}

	data, err := os.ReadFile(filepath.Join(ConfigDir(pluginName), filename))
	if err != nil {
		return cfg
	}

	var stored map[string]interface{}
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return cfg
	}
	for k, v := range stored {
		cfg[k] = v
	}
	return cfg
}

// SaveConfigObject persists a plugin configuration object, creating the
// plugin's configuration directory if needed.
func SaveConfigObject(pluginName, filename string, item map[string]interface{}) error {
	dir := ConfigDir(pluginName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(item)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, filename), data, 0644)
}
