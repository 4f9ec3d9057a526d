package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/tokengaps/internal/analysis"
	"github.com/Aman-CERP/tokengaps/internal/config"
	"github.com/Aman-CERP/tokengaps/internal/errors"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
		Long: `Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/tokengaps/config.yaml)
  3. Project config (.tokengaps.yaml)
  4. Environment variables (TOKENGAPS_*)`,
	}

	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigFiltersCmd())

	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return errors.InternalError("failed to encode config", err)
			}
			return enc.Close()
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default .tokengaps.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, ".tokengaps.yaml")
			if _, err := os.Stat(path); err == nil && !force {
				return errors.ValidationError(path+" already exists", nil).
					WithSuggestion("Use --force to overwrite")
			}
			if err := config.NewConfig().WriteYAML(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List registered tokenizers and filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := analysis.DefaultRegistry()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "tokenizers:")
			for _, name := range reg.TokenizerNames() {
				_, _ = fmt.Fprintf(out, "  %s\n", name)
			}
			_, _ = fmt.Fprintln(out, "filters:")
			for _, name := range reg.FilterNames() {
				_, _ = fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
