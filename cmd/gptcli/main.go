// gptcli sends one prompt to an OpenAI-compatible chat completion API and prints the reply.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	flag "github.com/spf13/pflag"
	"github.com/tnglemongrass/gptcli/internal/chat"
	"github.com/tnglemongrass/gptcli/internal/config"
	"github.com/tnglemongrass/gptcli/internal/logging"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	path := flags.ConfigPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(1)
		}
		path = config.DefaultPath(home)
	}

	// Config failures are reported on stdout.
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(cfg)

	logger := logging.New(os.Stderr, flags.Verbose)
	logger.Debug("config loaded", "path", path, "openai", cfg.OpenAI.String())

	session, err := chat.NewSession(cfg, os.Stdout, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}
	session.ShowUsage = flags.Usage

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chat.Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	readInput := func(prompt string) (string, error) {
		rl.SetPrompt(prompt)
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return line, err
	}

	if err := session.Run(readInput); err != nil {
		rl.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
