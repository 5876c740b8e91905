package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
	"github.com/yaklabco/mdlinks/pkg/lint"
	"github.com/yaklabco/mdlinks/pkg/lint/validators"
)

// validatorInfo represents a validator in JSON output.
type validatorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Enabled     bool   `json:"enabled"`
}

func newValidatorsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validators",
		Short: "List available validators",
		Long: `List all validators with their description, severity and whether they run
under the current configuration.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidators(cmd, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func runValidators(cmd *cobra.Command, format string) error {
	if format != "text" && format != formatJSON {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format %q: must be text or json", format))
	}

	cfg, _, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}

	// Resolution applies enable/disable lists and severity overrides.
	resolved := make(map[string]lint.ResolvedValidator)
	for _, rv := range lint.ResolveValidators(lint.DefaultRegistry, cfg) {
		resolved[rv.Validator.Name()] = rv
	}

	infos := make([]validatorInfo, 0, lint.DefaultRegistry.Len())
	for _, info := range validators.Info(lint.DefaultRegistry) {
		vi := validatorInfo{
			Name:        info.Name,
			Description: info.Description,
			Severity:    string(info.Severity),
		}
		if rv, ok := resolved[info.Name]; ok {
			vi.Enabled = true
			vi.Severity = string(rv.Severity)
		}
		infos = append(infos, vi)
	}

	if format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return fmt.Errorf("encoding validators: %w", err)
		}
		return nil
	}

	logger := logging.NewWithWriter(cmd.OutOrStdout(), "info")
	logger.Info("available validators")
	for _, vi := range infos {
		enabled := "off"
		if vi.Enabled {
			enabled = "on"
		}
		logger.Info(vi.Name,
			logging.FieldSeverity, vi.Severity,
			logging.FieldEnabled, enabled,
			logging.FieldDescription, vi.Description,
		)
	}
	return nil
}
