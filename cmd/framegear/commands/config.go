package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/framegear/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to keep several device and agent setups,
similar to kubectl's context management.

Configuration is stored in ~/.giztoy/framegear/config.yaml`,
}

var contextCmd = &cobra.Command{
	Use:     "context",
	Aliases: []string{"ctx"},
	Short:   "Manage contexts",
}

var contextSetCmd = &cobra.Command{
	Use:   "set <name> <key=value>...",
	Short: "Create or update a context",
	Long: `Create or update a context. The context is created when it does not exist.

Settings:
  link_url        websocket address of the device bridge
  message_base    first message type byte (default 0x30)
  app_file        Lua application uploaded by resend (default lua-repl.lua)
  lib_dir         directory of the standard Lua libraries
  wake_words      comma separated wake words
  agent_base_url  OpenAI compatible endpoint
  agent_model     chat model
  agent_api_key   API key of the endpoint
  stt_model       transcription model (default whisper-1)
  brave_api_key   Brave Search API key enabling web search
  save_audio      WAV file archiving the microphone
  resend          upload the application on start (true/false)
  reply_timeout   console reply timeout in seconds
  dev_mode        enable developer commands (true/false)

Example:
  framegear config context set glasses link_url=ws://frame.local:8080 \
    agent_base_url=http://localhost:11434/v1 agent_model=qwen3`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		name := args[0]
		ctx, ok := cfg.Contexts[name]
		if !ok {
			ctx = &cli.Context{}
		}
		for _, kv := range args[1:] {
			key, value, found := strings.Cut(kv, "=")
			if !found {
				return fmt.Errorf("expected key=value, got %q", kv)
			}
			if err := ctx.Set(key, value); err != nil {
				return err
			}
		}
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess(cmd.OutOrStdout(), "Context %q saved", name)
		return nil
	},
}

var contextUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Switched to context %q", args[0])
		return nil
	},
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(cmd.OutOrStdout(), "Context %q deleted", args[0])
		return nil
	},
}

var contextListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Fprintln(out, "No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tLINK\tAGENT")
		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			agent := ctx.AgentModel
			if ctx.AgentBaseURL != "" {
				agent = strings.TrimSpace(agent + " @ " + ctx.AgentBaseURL)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, ctx.LinkURL, agent)
		}
		return w.Flush()
	},
}

var showFormat string

var contextShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a context with environment overrides applied",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			contextName = args[0]
		}
		ctx, err := resolveContext()
		if err != nil {
			return err
		}
		return cli.Output(map[string]any{
			"name":     ctx.Name,
			"settings": ctx.Settings(),
		}, cli.OutputOptions{
			Format: cli.OutputFormat(showFormat),
			Writer: cmd.OutOrStdout(),
		})
	},
}

func init() {
	contextShowCmd.Flags().StringVarP(&showFormat, "output", "o", "yaml", "output format (yaml, json)")

	contextCmd.AddCommand(contextSetCmd, contextUseCmd, contextDeleteCmd, contextListCmd, contextShowCmd)
	configCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(configCmd)
}
