package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ExportCommand writes one indicator as CSV.
func ExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <indicator>",
		Short: "Write an indicator's rows to a CSV file",
		Long: `Write the Year and Indicator Value columns of one indicator to a CSV file.
The default file name is "<indicator>_<country without spaces>.csv".

Examples:
  envdash export "Forest area (% of land area)"
  envdash export "Forest area (% of land area)" -o - --all-columns`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "", `Output path, "-" for stdout (default: derived from the indicator)`)
	cmd.Flags().Bool("all-columns", false, "Export every source column")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	full, _ := cmd.Flags().GetBool("all-columns")

	name, data, err := newService(cmd, "").Export(cmd.Context(), args[0], full)
	if err != nil {
		return reportError(cmd, err)
	}

	out, _ := cmd.Flags().GetString("output")
	switch out {
	case "-":
		_, err := cmd.OutOrStdout().Write(data)
		return err
	case "":
		out = safeFileName(name)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return reportError(cmd, fmt.Errorf("write %s: %w", out, err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}

// pathSeparators turns a derived file name into a single path element.
var pathSeparators = strings.NewReplacer("/", "_", `\`, "_")

func safeFileName(name string) string {
	return pathSeparators.Replace(name)
}
