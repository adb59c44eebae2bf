package hcss

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the hcss.yaml configuration
type Config struct {
	InputDir   string       `yaml:"input_dir"`
	OutputDir  string       `yaml:"output_dir"`
	Extensions []string     `yaml:"extensions"`
	Output     OutputConfig `yaml:"output"`
	Parser     ParserConfig `yaml:"parser"`
	Test       TestConfig   `yaml:"test"`
}

// OutputConfig represents serializer settings
type OutputConfig struct {
	Minify bool   `yaml:"minify"`
	Indent int    `yaml:"indent"`
	Header string `yaml:"header"`
}

// ParserConfig represents resolution limits
type ParserConfig struct {
	MaxIncludeDepth int `yaml:"max_include_depth"`
	MaxNestingDepth int `yaml:"max_nesting_depth"`
}

// TestConfig represents fixture runner settings
type TestConfig struct {
	Dir string `yaml:"dir"`
	// IgnoreWhitespace is a pointer to distinguish between unset and false.
	IgnoreWhitespace *bool `yaml:"ignore_whitespace"`
	// MaxDuration is reported as a warning when a case runs longer.
	MaxDuration time.Duration `yaml:"max_duration"`
}

// ShouldIgnoreWhitespace returns true unless ignore_whitespace: false is set
func (t TestConfig) ShouldIgnoreWhitespace() bool {
	return t.IgnoreWhitespace == nil || *t.IgnoreWhitespace
}

// Default values
const (
	DefaultInputDir        = "styles"
	DefaultOutputDir       = "dist"
	DefaultIndent          = 2
	DefaultMaxIncludeDepth = 64
	DefaultMaxNestingDepth = 256
	DefaultTestDir         = "testdata/fixtures"
)

// LoadConfig loads configuration from the specified file. A missing file
// yields the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := DefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

func validateConfig(config *Config) error {
	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: extension '%s' must start with '.'", ErrConfigValidation, ext)
		}
	}

	if config.Output.Indent < 0 {
		return fmt.Errorf("%w: output.indent must be non-negative, got %d", ErrConfigValidation, config.Output.Indent)
	}

	if config.Parser.MaxIncludeDepth < 0 {
		return fmt.Errorf("%w: parser.max_include_depth must be positive, got %d", ErrConfigValidation, config.Parser.MaxIncludeDepth)
	}

	if config.Parser.MaxNestingDepth < 0 {
		return fmt.Errorf("%w: parser.max_nesting_depth must be positive, got %d", ErrConfigValidation, config.Parser.MaxNestingDepth)
	}

	if config.Test.MaxDuration < 0 {
		return fmt.Errorf("%w: test.max_duration must be >= 0, got %s", ErrConfigValidation, config.Test.MaxDuration)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = DefaultInputDir
	}

	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}

	if len(config.Extensions) == 0 {
		config.Extensions = []string{".hcss"}
	}

	if config.Output.Indent == 0 {
		config.Output.Indent = DefaultIndent
	}

	if config.Parser.MaxIncludeDepth == 0 {
		config.Parser.MaxIncludeDepth = DefaultMaxIncludeDepth
	}

	if config.Parser.MaxNestingDepth == 0 {
		config.Parser.MaxNestingDepth = DefaultMaxNestingDepth
	}

	if config.Test.Dir == "" {
		config.Test.Dir = DefaultTestDir
	}
}

func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvRe = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvRe  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

func expandEnvVars(s string) string {
	s = bracedEnvRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in path fields
func expandConfigEnvVars(config *Config) {
	config.InputDir = expandEnvVars(config.InputDir)
	config.OutputDir = expandEnvVars(config.OutputDir)
	config.Test.Dir = expandEnvVars(config.Test.Dir)
	config.Output.Header = expandEnvVars(config.Output.Header)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// HasExtension reports whether path has one of the configured source extensions.
func (c *Config) HasExtension(path string) bool {
	for _, ext := range c.Extensions {
		if strings.HasSuffix(strings.ToLower(path), strings.ToLower(ext)) {
			return true
		}
	}

	return false
}
