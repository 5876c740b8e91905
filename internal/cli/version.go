package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlinks/internal/logging"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of mdlinks.`,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case short:
				fmt.Fprintln(out, info.Version)
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err := enc.Encode(map[string]string{
					"version": info.Version,
					"commit":  info.Commit,
					"date":    info.Date,
					"go":      runtime.Version(),
				})
				if err != nil {
					return fmt.Errorf("encoding version: %w", err)
				}
			default:
				logging.NewWithWriter(out, "info").Info("mdlinks",
					logging.FieldVersion, info.Version,
					logging.FieldCommit, info.Commit,
					logging.FieldBuilt, info.Date,
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")

	return cmd
}
