package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlinks/internal/configloader"
	"github.com/yaklabco/mdlinks/internal/logging"
	"github.com/yaklabco/mdlinks/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

type initFlags struct {
	force    bool
	full     bool
	resolved bool
	output   string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .mdlinks.yml configuration file",
		Long: `Create a new .mdlinks.yml configuration file in the current directory.

Examples:
  mdlinks init                      Create a minimal .mdlinks.yml
  mdlinks init --full               Document every validator
  mdlinks init --resolved           Write the configuration currently in effect
  mdlinks init --output ci.yml      Write to a custom file path`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "document every validator in the template")
	cmd.Flags().BoolVar(&flags.resolved, "resolved", false,
		"write the merged configuration from all layers instead of a template")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.DefaultProjectConfig(), "output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if flags.resolved {
		cfg, _, err := loadConfig(cmd, &config.Config{})
		if err != nil {
			return err
		}
		if err := configloader.WriteConfig(cfg, absPath, flags.force); err != nil {
			return withExitCode(ExitConfigError, err)
		}
		logger.Info("wrote resolved configuration", logging.FieldPath, flags.output)
		return nil
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return withExitCode(ExitInvalidUsage,
				fmt.Errorf("file %q already exists; use --force to overwrite", flags.output))
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'mdlinks validators' to see all available validators")

	return nil
}
