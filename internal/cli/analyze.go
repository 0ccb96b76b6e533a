package cli

import (
	"encoding/json"
	"fmt"

	"github.com/imhuimie/string-analyzer-go/internal/analyzer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ValidOutputs defines the allowed analyze output formats.
var ValidOutputs = []string{"json", "yaml"}

// AnalyzeResult is what the analyze command prints
type AnalyzeResult struct {
	Value      string              `json:"value" yaml:"value"`
	Properties analyzer.Properties `json:"properties" yaml:"properties"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Print the properties of a string without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := AnalyzeResult{Value: args[0], Properties: analyzer.Analyze(args[0])}
			out := cmd.OutOrStdout()

			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(result); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("invalid output %q: must be one of %v", output, ValidOutputs)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json|yaml)")

	return cmd
}
