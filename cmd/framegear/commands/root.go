package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/haivivi/framegear/pkg/cli"
)

// appName names the config directory under ~/.giztoy.
const appName = "framegear"

var (
	// Global flags
	verbose     bool
	contextName string
	configPath  string

	// Global configuration (loaded at init time)
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "framegear",
	Short: "Host bridge for Frame smart glasses",
	Long: `framegear - connects a Frame device to a conversational agent.

The host uploads and starts the Lua application on the device, keeps the
device clock in sync, saves camera captures, transcribes the microphone,
answers wake word requests with an OpenAI compatible agent, and speaks the
replies while showing them on the glasses.

Configuration is stored in ~/.giztoy/framegear/config.yaml. Every context
setting can be overridden with a FRAMEGEAR_<SETTING> environment variable,
and flags override both.

Examples:
  # Create a context and use it
  framegear config context set glasses link_url=ws://frame.local:8080 resend=true
  framegear config context use glasses

  # Run a session, uploading the application first
  framegear run --resend

  # Or pick the context on the command line
  framegear run -c glasses`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.giztoy/framegear/config.yaml)")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}

// GetConfig returns the global configuration, loading it on first use.
func GetConfig() (*cli.Config, error) {
	if globalConfig == nil {
		cfg, err := cli.LoadConfigWithPath(appName, configPath)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// resolveContext returns the selected context with FRAMEGEAR_* overrides
// applied. The stored context is not modified.
func resolveContext() (*cli.Context, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	stored, err := cfg.ResolveContext(contextName)
	if err != nil {
		return nil, err
	}
	ctx := *stored
	if err := ctx.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &ctx, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
