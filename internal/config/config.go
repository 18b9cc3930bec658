// Package config loads the gptcli configuration file.
//
// Precedence: CLI flags > env vars > .env > config file. The file itself is
// mandatory; Load only reads it, and the entry point layers ApplyEnv and
// Flags.Apply on top of a file that parsed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the user's home directory.
	FileName = ".gptcli.toml"

	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultTimeout  = 120 * time.Second
)

// Config holds everything read from the config file.
type Config struct {
	OpenAI OpenAI
}

// OpenAI is the [openai] table.
type OpenAI struct {
	Model        string
	AccessKey    string
	Endpoint     string
	Timeout      time.Duration
	SystemPrompt string
}

// String never includes the access key.
func (o OpenAI) String() string {
	return fmt.Sprintf("model=%s endpoint=%s timeout=%s", o.Model, o.Endpoint, o.Timeout)
}

// Error reports a config file that could not be read or parsed.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s config %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	errNoTable     = errors.New("missing [openai] table")
	errNoModel     = errors.New("missing field openai.model")
	errNoAccessKey = errors.New("missing field openai.access_key")
)

// fileConfig mirrors the on-disk layout. Required keys are pointers so that
// a missing key can be told apart from an empty one.
type fileConfig struct {
	OpenAI *fileOpenAI `toml:"openai" yaml:"openai"`
}

type fileOpenAI struct {
	Model        *strictString `toml:"model" yaml:"model"`
	AccessKey    *strictString `toml:"access_key" yaml:"access_key"`
	Endpoint     strictString  `toml:"endpoint" yaml:"endpoint"`
	Timeout      strictString  `toml:"timeout" yaml:"timeout"`
	SystemPrompt strictString  `toml:"system_prompt" yaml:"system_prompt"`
}

// strictString only accepts YAML string scalars; yaml.v3 would otherwise
// turn `model: 5` into "5". TOML already rejects mismatched types.
type strictString string

func (s *strictString) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		return fmt.Errorf("line %d: expected string, got %s", n.Line, n.ShortTag())
	}
	*s = strictString(n.Value)
	return nil
}

// DefaultPath returns the config file location inside home.
func DefaultPath(home string) string {
	return filepath.Join(home, FileName)
}

// Load reads and parses the config file at path. It does not consult the
// environment and never exits; callers decide whether a failure is fatal.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Op: "read", Err: err}
	}

	cfg, err := parse(path, data)
	if err != nil {
		return nil, &Error{Path: path, Op: "parse", Err: err}
	}
	return cfg, nil
}

func parse(path string, data []byte) (*Config, error) {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
	default:
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
	}

	if fc.OpenAI == nil {
		return nil, errNoTable
	}
	if fc.OpenAI.Model == nil {
		return nil, errNoModel
	}
	if fc.OpenAI.AccessKey == nil {
		return nil, errNoAccessKey
	}

	cfg := &Config{OpenAI: OpenAI{
		Model:        string(*fc.OpenAI.Model),
		AccessKey:    string(*fc.OpenAI.AccessKey),
		Endpoint:     DefaultEndpoint,
		Timeout:      DefaultTimeout,
		SystemPrompt: string(fc.OpenAI.SystemPrompt),
	}}
	if fc.OpenAI.Endpoint != "" {
		cfg.OpenAI.Endpoint = string(fc.OpenAI.Endpoint)
	}
	if fc.OpenAI.Timeout != "" {
		d, err := parseDuration(string(fc.OpenAI.Timeout))
		if err != nil {
			return nil, fmt.Errorf("openai.timeout: %w", err)
		}
		cfg.OpenAI.Timeout = d
	}
	return cfg, nil
}

// ApplyEnv loads a .env file from the working directory, if any, and then
// overlays GPTCLI_MODEL, GPTCLI_ENDPOINT and GPTCLI_TIMEOUT.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()
	return c.applyEnv()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GPTCLI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("GPTCLI_ENDPOINT"); v != "" {
		c.OpenAI.Endpoint = v
	}
	if v := os.Getenv("GPTCLI_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("GPTCLI_TIMEOUT: %w", err)
		}
		c.OpenAI.Timeout = d
	}
	return nil
}

// parseDuration accepts plain integers (seconds) or Go duration strings.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
