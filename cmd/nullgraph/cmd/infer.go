package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nullgraph/nullgraph"
	"github.com/nullgraph/nullgraph/diagnostic"
	"github.com/nullgraph/nullgraph/external"
	"github.com/nullgraph/nullgraph/fixture"
)

var inferTimeout time.Duration

var inferCmd = &cobra.Command{
	Use:   "infer <methods.json>",
	Short: "Infer nullability over a JSON-described set of methods and report contradictions",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfer,
}

func init() {
	inferCmd.Flags().DurationVar(&inferTimeout, "timeout", 30*time.Second, "cancel the build if it has not finished within this duration")
	rootCmd.AddCommand(inferCmd)
}

func runInfer(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.CachePath != "" {
		cache, err := external.Open(cfg.CachePath, cfg.CachePath+".manifest.json")
		if err != nil {
			return fmt.Errorf("infer: %w", err)
		}
		defer cache.Close()
		cfg.Cache = cache
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("infer: reading %s: %w", args[0], err)
	}
	var specs []fixture.MethodSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("infer: parsing %s: %w", args[0], err)
	}

	units, err := nullgraph.UnitsFromSpecs(specs)
	if err != nil {
		return fmt.Errorf("infer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), inferTimeout)
	defer cancel()
	report, err := nullgraph.Infer(ctx, units, cfg)
	if err != nil {
		return err
	}

	var buildErrs int
	for _, r := range report.BuildErrors {
		if r.Err != nil {
			buildErrs++
			fmt.Fprintf(os.Stderr, "infer: %s: %v\n", r.Tree, r.Err)
		}
	}

	if len(report.Contradictions) > 0 {
		fmt.Println(diagnostic.Render(report.Contradictions, shouldColor(cfg)))
	}

	elapsed := time.Since(start)
	fmt.Printf("infer: processed %s nodes (%s declared symbols) across %s trees in %s\n",
		humanize.Comma(int64(len(report.Graph.Nodes()))), humanize.Comma(int64(report.Registry.DeclaredSymbolCount())),
		humanize.Comma(int64(len(units))), elapsed.Round(time.Millisecond))

	if buildErrs > 0 || len(report.Contradictions) > 0 {
		return fmt.Errorf("infer: %d build error(s), %d contradiction(s)", buildErrs, len(report.Contradictions))
	}
	return nil
}
