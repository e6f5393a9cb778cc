// Package cli provides the configuration and terminal helpers of the
// framegear command.
//
// This package includes:
//   - Configuration management (named contexts, FRAMEGEAR_* overrides)
//   - Output formatting (JSON, YAML)
//   - Terminal styles for the session banner and console
//
// Configuration is stored in ~/.giztoy/<app>/ directory, supporting
// multiple contexts similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("framegear")
//	ctx, err := cfg.ResolveContext("")
//	err = ctx.ApplyEnv(os.LookupEnv)
//
//	cli.Output(ctx.Settings(), cli.OutputOptions{Format: cli.FormatJSON})
package cli
