package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"md2confluence/internal/converter"
)

//go:embed default.yaml
var defaultConfigData []byte

// ConvertConfig conversion defaults
type ConvertConfig struct {
	Theme            string `yaml:"theme"`            // code macro theme, empty for none
	DetectLanguage   bool   `yaml:"detectLanguage"`   // guess a language for untagged code blocks
	StripFrontMatter bool   `yaml:"stripFrontMatter"` // drop leading front matter before converting
}

// TemplatesConfig template repository settings
type TemplatesConfig struct {
	Dir string `yaml:"dir"` // extra templates appended after the built-ins
}

// LogConfig logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig MCP server identity
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"` // empty uses the build version
}

// Config full configuration
type Config struct {
	Convert   ConvertConfig   `yaml:"convert"`
	Templates TemplatesConfig `yaml:"templates"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
}

// DefaultConfig returns the embedded defaults
func DefaultConfig() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigData, &cfg); err != nil {
		panic(fmt.Sprintf("internal error: failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// LoadConfig loads a config file over the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open config")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "could not parse config")
	}

	return cfg, nil
}

// ConvertOptions builds converter options from the convert section
func (c *Config) ConvertOptions() converter.Options {
	opts := converter.DefaultOptions().WithTheme(c.Convert.Theme)
	opts.DetectLanguage = c.Convert.DetectLanguage
	opts.StripFrontMatter = c.Convert.StripFrontMatter
	return opts
}
