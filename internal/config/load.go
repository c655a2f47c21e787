package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "TGREP_CONFIG"

// fileNames are looked for in the working directory and its parents.
var fileNames = []string{".tgrep.toml", ".tgrep.yaml", ".tgrep.yml", ".tgrep.json"}

// Load reads the config file at path into cfg. Keys missing from the file
// keep their current values. Unknown keys are an error.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Field: "config", Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return &Error{Field: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return &Error{Field: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return &Error{Field: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
		}
	default:
		return &Error{Field: "config", Err: fmt.Errorf("unsupported config extension: %q", ext)}
	}
	cfg.ConfigFile = path
	return nil
}

// Find locates the config file to use. explicit (from --config) wins, then
// $TGREP_CONFIG, then the nearest .tgrep.* file from dir upwards, then
// $XDG_CONFIG_HOME/tgrep/config.*. It returns "" when there is none.
func Find(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", &Error{Field: "config", Err: err}
		}
		return explicit, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", &Error{Field: EnvConfig, Err: err}
		}
		return env, nil
	}

	if dir != "" {
		cur := filepath.Clean(dir)
		for {
			for _, name := range fileNames {
				candidate := filepath.Join(cur, name)
				if isFile(candidate) {
					return candidate, nil
				}
			}
			parent := filepath.Dir(cur)
			if parent == cur {
				break
			}
			cur = parent
		}
	}

	for _, ext := range []string{"toml", "yaml", "yml", "json"} {
		candidate := filepath.Join(xdg.ConfigHome, "tgrep", "config."+ext)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
