package doctest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/doctest/sandbox"
)

// DefaultSetupFile is read by LoadSetup when no path is given.
const DefaultSetupFile = ".doctest.yaml"

// setupFile is the on-disk shape of the setup file.
type setupFile struct {
	Globals      map[string]any `yaml:"globals"`
	Require      map[string]any `yaml:"require"`
	RegexRequire []struct {
		Pattern string `yaml:"pattern"`
		Module  any    `yaml:"module"`
	} `yaml:"regexRequire"`
	Transpile *bool  `yaml:"transpile"`
	Target    string `yaml:"target"`
	Timeout   string `yaml:"timeout"`
}

// LoadSetup reads a setup file into a Config. With an empty path it reads
// DefaultSetupFile and treats a missing file as an empty configuration.
// Regex modules are fixed values; every match of a pattern resolves to the
// same module.
func LoadSetup(path string) (Config, error) {
	optional := path == ""
	if optional {
		path = DefaultSetupFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("%w: read setup: %v", ErrConfiguration, err)
	}
	return ParseSetup(data)
}

// ParseSetup decodes setup file contents.
func ParseSetup(data []byte) (Config, error) {
	var f setupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("%w: parse setup: %v", ErrConfiguration, err)
	}

	cfg := Config{
		Globals: f.Globals,
		Require: f.Require,
		Target:  f.Target,
	}
	if f.Transpile != nil {
		cfg.NoTranspile = !*f.Transpile
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: timeout: %v", ErrConfiguration, err)
		}
		cfg.Timeout = d
	}
	for _, rr := range f.RegexRequire {
		module := rr.Module
		cfg.RegexRequire = append(cfg.RegexRequire, sandbox.Pattern{
			Pattern: rr.Pattern,
			Factory: func(...string) (any, error) { return module, nil },
		})
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
