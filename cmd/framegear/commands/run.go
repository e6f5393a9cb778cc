package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/haivivi/framegear/pkg/assistant"
	"github.com/haivivi/framegear/pkg/capture"
	"github.com/haivivi/framegear/pkg/cli"
	"github.com/haivivi/framegear/pkg/console"
	"github.com/haivivi/framegear/pkg/framemsg"
	"github.com/haivivi/framegear/pkg/session"
	"github.com/haivivi/framegear/pkg/voice"
)

// defaultAgentModel is used when a context sets an agent endpoint without
// a model.
const defaultAgentModel = "gpt-4o-mini"

// braveEnv is the search key variable shared with other Brave clients.
const braveEnv = "BRAVE_SEARCH_API_KEY"

var (
	flagURL          string
	flagResend       bool
	flagAppFile      string
	flagLibDir       string
	flagSaveAudio    string
	flagReplyTimeout int
	flagDevMode      bool
	flagNoSpeak      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a Frame device and start the console",
	Long: `Connect to a Frame device and start the console.

Lines typed at the prompt are sent to the device as Lua; type .help for
the built in commands. With an agent endpoint configured, wake word
requests from the microphone and .ask lines are answered, spoken and shown
on the glasses.

Examples:
  framegear run --url ws://frame.local:8080 --resend
  framegear run -c glasses --save-audio mic.wav`,
	RunE: runSession,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&flagURL, "url", "", "websocket address of the device bridge")
	f.BoolVar(&flagResend, "resend", false, "upload and start the application before the console")
	f.StringVar(&flagAppFile, "app", "", "Lua application file (default lua-repl.lua)")
	f.StringVar(&flagLibDir, "lib-dir", "", "directory of the standard Lua libraries")
	f.StringVar(&flagSaveAudio, "save-audio", "", "archive microphone audio to this WAV file")
	f.IntVar(&flagReplyTimeout, "reply-timeout", 0, "console reply timeout in seconds")
	f.BoolVar(&flagDevMode, "dev", false, "enable developer commands (.python)")
	f.BoolVar(&flagNoSpeak, "no-speak", false, "do not speak agent replies")

	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overrides ctx with the flags set on cmd.
func applyRunFlags(cmd *cobra.Command, ctx *cli.Context) {
	f := cmd.Flags()
	if f.Changed("url") {
		ctx.LinkURL = flagURL
	}
	if f.Changed("resend") {
		ctx.Resend = flagResend
	}
	if f.Changed("app") {
		ctx.AppFile = flagAppFile
	}
	if f.Changed("lib-dir") {
		ctx.LibDir = flagLibDir
	}
	if f.Changed("save-audio") {
		ctx.SaveAudio = flagSaveAudio
	}
	if f.Changed("reply-timeout") {
		ctx.ReplyTimeout = flagReplyTimeout
	}
	if f.Changed("dev") {
		ctx.DevMode = flagDevMode
	}
}

// sessionConfig builds the session configuration of ctx. It leaves Speaker
// and Out to the caller.
func sessionConfig(ctx *cli.Context, paths *cli.Paths, logger *slog.Logger) session.Config {
	libDir := paths.ExpandHome(ctx.LibDir)
	if libDir == "" {
		libDir = paths.LuaDir()
	}
	var libs fs.FS = os.DirFS(libDir)

	sc := session.Config{
		Base:         byte(ctx.MessageBase),
		AppFile:      paths.ExpandHome(ctx.AppFile),
		Libs:         libs,
		Resend:       ctx.Resend,
		ReplyTimeout: time.Duration(ctx.ReplyTimeout) * time.Second,
		DevMode:      ctx.DevMode,
		SaveAudio:    paths.ExpandHome(ctx.SaveAudio),
		ImageDir:     paths.CaptureDir(),
		Logger:       logger,
	}
	if ctx.WakeWords != "" {
		sc.WakeWords = assistant.ParseWakeWords(ctx.WakeWords)
	}

	if ctx.AgentBaseURL != "" || ctx.AgentAPIKey != "" {
		model := ctx.AgentModel
		if model == "" {
			model = defaultAgentModel
		}
		agent := assistant.NewAgent(assistant.AgentConfig{
			BaseURL: ctx.AgentBaseURL,
			APIKey:  ctx.AgentAPIKey,
			Model:   model,
			Tools:   agentTools(ctx, logger),
		})
		agent.Logger = logger
		sc.Agent = agent
		sc.STT = assistant.NewTranscriber(assistant.TranscriberConfig{
			BaseURL: ctx.AgentBaseURL,
			APIKey:  ctx.AgentAPIKey,
			Model:   ctx.STTModel,
		})
	}
	return sc
}

// agentTools returns the tools of the agent. Web search is enabled by the
// brave_api_key setting, or BRAVE_SEARCH_API_KEY when that is unset.
func agentTools(ctx *cli.Context, logger *slog.Logger) []assistant.Tool {
	tools := []assistant.Tool{assistant.TimeTool(time.Now)}

	key := ctx.BraveAPIKey
	if key == "" {
		key = os.Getenv(braveEnv)
	}
	if key == "" {
		logger.Warn("web search disabled: no Brave API key",
			"setting", "brave_api_key", "env", cli.EnvName("brave_api_key"))
		return tools
	}
	search, err := assistant.BraveSearchTool(assistant.BraveSearchConfig{APIKey: key})
	if err != nil {
		logger.Warn("web search disabled", "error", err)
		return tools
	}
	return append(tools, search)
}

func runSession(cmd *cobra.Command, args []string) error {
	rc, err := resolveContext()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, rc)
	if rc.LinkURL == "" {
		return fmt.Errorf("no device address. Use --url or configure a context:\n" +
			"  framegear config context set glasses link_url=ws://frame.local:8080")
	}

	paths, err := cli.NewPaths(appName)
	if err != nil {
		return err
	}
	if err := paths.EnsureCaptureDir(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("context", rc.Name)
	out := cmd.OutOrStdout()
	sc := sessionConfig(rc, paths, logger)
	sc.Out = out

	if !flagNoSpeak {
		speaker, err := voice.NewSpeaker(ctx)
		if err != nil {
			logger.Warn("speech output unavailable", "error", err)
		} else {
			defer speaker.Close()
			sc.Speaker = speaker
		}
	}

	link, err := framemsg.DialWebSocket(ctx, rc.LinkURL, nil)
	if err != nil {
		return err
	}
	sess, err := session.New(link, sc)
	if err != nil {
		link.Close()
		return err
	}

	styles := cli.NewStyles(cli.DefaultTheme)
	fmt.Fprintln(out, styles.Banner("framegear",
		"context", rc.Name,
		"device", rc.LinkURL,
		"session", sess.ID(),
	))
	fmt.Fprintln(out, styles.Help.Render("Type .help for commands, .exit to quit."))

	if err := sess.Start(ctx); err != nil {
		sess.Close()
		return err
	}

	con := console.New(cmd.InOrStdin(), out)
	con.HelpStyle = styles.Help
	con.ErrorStyle = styles.Error
	if in, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(in.Fd()) {
		term := console.NewTerminal(paths.HistoryFile())
		defer func() {
			if err := term.Close(); err != nil {
				logger.Warn("close terminal", "error", err)
			}
		}()
		con.Lines = term
	}

	started := time.Now()
	err = sess.Run(ctx, con)

	cli.PrintInfo(out, "Session lasted %s", cli.FormatDuration(time.Since(started)))
	if path, n := sess.ArchivedAudio(); path != "" {
		cli.PrintInfo(out, "Saved %s of audio (%s) to %s",
			cli.FormatDuration(capture.MicFormat.Duration(n)), cli.FormatBytes(n), path)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
