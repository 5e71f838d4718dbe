// Package cli implements the revloop command-line interface.
//
// Commands are thin: they parse flags, then hand off to the workflow
// runners. All dependencies flow through [App] so tests can substitute a
// mock worker and capture output.
package cli

import (
	"fmt"
	"os"

	"revloop/internal/config"
	"revloop/internal/llm"
	"revloop/internal/output"
)

// App holds the dependencies shared by all commands.
type App struct {
	Config  *config.Config
	Worker  llm.Worker
	Printer *output.Printer
}

// NewApp builds an App from configuration, constructing the provider
// worker named there.
func NewApp(cfg *config.Config) (*App, error) {
	worker, err := buildWorker(cfg)
	if err != nil {
		return nil, err
	}
	printer := output.NewPrinter()
	printer.TruncateLines = cfg.Output.TruncateLines
	printer.TruncateLength = cfg.Output.TruncateLength
	return &App{Config: cfg, Worker: worker, Printer: printer}, nil
}

func buildWorker(cfg *config.Config) (llm.Worker, error) {
	p := cfg.Provider
	switch p.Name {
	case "anthropic":
		return llm.NewAnthropicWorker(cfg.APIKey(), p.Model, p.MaxTokens, p.BaseURL)
	case "openai":
		return llm.NewOpenAIWorker(cfg.APIKey(), p.Model, p.MaxTokens, p.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider %q (want anthropic or openai)", p.Name)
	}
}

// Execute loads configuration, builds the app, and runs the root command.
// It exits the process with the command's exit code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "revloop: %v\n", err)
		os.Exit(1)
	}
	app, err := NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "revloop: %v\n", err)
		os.Exit(1)
	}

	root := NewRootCommand(app)
	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
