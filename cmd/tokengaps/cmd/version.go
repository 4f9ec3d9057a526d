package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tokengaps/internal/ui"
	"github.com/Aman-CERP/tokengaps/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput, shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the release version, commit, build date and platform.

Builds without release ldflags report the module version and VCS revision
recorded by the Go toolchain. --short wins over --json.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := ui.NewPrinter(cmd.OutOrStdout())
			switch {
			case shortOutput:
				p.Line("%s", version.Short())
			case jsonOutput:
				return p.JSON(version.GetInfo())
			default:
				p.Line("%s", version.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version")

	return cmd
}
