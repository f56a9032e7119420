package cmd

import (
	"os"

	"github.com/nullgraph/nullgraph/config"
	"github.com/nullgraph/nullgraph/diagnostic"
)

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadOrDefault(".")
}

// shouldColor resolves the effective color mode: the --color flag
// overrides the config file, "auto" defers to terminal detection.
func shouldColor(cfg *config.Config) bool {
	mode := cfg.Color
	if colorMode != "" {
		mode = colorMode
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return diagnostic.ShouldColor(os.Stdout.Fd())
	}
}
