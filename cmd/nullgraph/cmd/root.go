// Package cmd implements nullgraph's command line: infer runs the full
// declare/build/solve pipeline over a JSON-described set of methods and
// reports contradictions, query exposes the harness path-query API
// (HasPathFromParameterToReturnType / CheckPaths) over a single method
// fixture, and version prints build information.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version, GitCommit, and BuildDate are set by build-time ldflags;
	// they default to placeholder values for a `go run`/`go build`
	// invocation without them.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	colorMode  string
)

var rootCmd = &cobra.Command{
	Use:   "nullgraph",
	Short: "Nullability-inference engine for reference-typed signatures",
	Long: `nullgraph infers declared nullability for unannotated reference-typed
parameters, fields, and return types from how they actually flow through a
program: a structural/flow analysis over a bound operation tree, not a
corpus-wide statistical inference.

Since compiling source text into a bound tree is out of this tool's scope,
infer and query take the bound tree directly as JSON (see the fixture
package), the same interface the Go-level test harness uses.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to .nullgraph.yaml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "auto, always, or never (overrides the config file)")
}
