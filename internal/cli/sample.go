package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphypad/pkg/dataset"
)

// sampleCommand creates the sample command, which writes the bundled data.
func (c *CLI) sampleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the sample data set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "-" {
				_, err := c.out.Write(dataset.SampleCSV())
				return err
			}
			if err := os.WriteFile(output, dataset.SampleCSV(), 0o644); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
			printSuccess("Sample data")
			printFile(output)
			printNextStep("Preview it", "graphypad preview "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", dataset.SampleFilename, "output file (- for stdout)")
	return cmd
}
