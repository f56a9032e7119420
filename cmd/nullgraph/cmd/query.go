package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullgraph/nullgraph/fixture"
	"github.com/nullgraph/nullgraph/harness"
	"github.com/nullgraph/nullgraph/solver"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <method.json>",
	Short: "Run the path-query harness (HasPathFromParameterToReturnType, CheckPaths) over one method fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the result as JSON instead of plain text")
	rootCmd.AddCommand(queryCmd)
}

// queryResult is query's reporting shape, both for plain-text and --json
// output.
type queryResult struct {
	HasPathFromParameterToReturn bool    `json:"hasPathFromParameterToReturn"`
	ReturnNullable               bool    `json:"returnNullable"`
	ReturnDependsOnInput         bool    `json:"returnDependsOnInput"`
	InputMustBeNonNull           bool    `json:"inputMustBeNonNull"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("query: reading %s: %w", args[0], err)
	}
	method, body, err := fixture.ParseMethod(data)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	c := harness.Case{Method: method, Body: body}

	out := harness.Run(c)
	result := queryResult{HasPathFromParameterToReturn: harness.HasPathFromParameterToReturnType(c)}

	// CheckPaths is built to compare against a caller's expected values;
	// query instead reports what actually holds, so it asks the same
	// three questions directly through the underlying primitive.
	if len(out.Params) > 0 {
		param := out.Params[0]
		result.ReturnNullable = solver.PathExists(out.Graph.Nullable(), out.Method.Node)
		result.ReturnDependsOnInput = solver.PathExists(param.Node, out.Method.Node)
		result.InputMustBeNonNull = solver.PathExists(param.Node, out.Graph.NonNull())
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("parameter -> return:    %v\n", result.HasPathFromParameterToReturn)
	fmt.Printf("Nullable -> return:      %v\n", result.ReturnNullable)
	fmt.Printf("parameter -> NonNull:    %v\n", result.InputMustBeNonNull)
	return nil
}
