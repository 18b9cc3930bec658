package config

import (
	"time"

	flag "github.com/spf13/pflag"
)

// Flags holds the command-line options of gptcli.
type Flags struct {
	ConfigPath string
	Endpoint   string
	Timeout    time.Duration
	Usage      bool
	Verbose    bool

	timeoutSet bool
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("gptcli", flag.ContinueOnError)
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Path to the config file (default ~/"+FileName+")")
	fs.StringVar(&f.Endpoint, "endpoint", "", "Completion endpoint URL")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Request timeout (0 disables)")
	fs.BoolVar(&f.Usage, "usage", false, "Print token usage after the reply")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.timeoutSet = fs.Changed("timeout")
	return f, nil
}

// Apply overlays flag values that were given explicitly.
func (f *Flags) Apply(c *Config) {
	if f.Endpoint != "" {
		c.OpenAI.Endpoint = f.Endpoint
	}
	if f.timeoutSet {
		c.OpenAI.Timeout = f.Timeout
	}
}
