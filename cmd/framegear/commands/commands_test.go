package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/haivivi/framegear/pkg/assistant"
	"github.com/haivivi/framegear/pkg/cli"
)

// execute runs the root command against a fresh config file in dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	globalConfig = nil
	contextName = ""
	showFormat = "yaml"
	verbose = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigContext_Lifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "config", "context", "set", "glasses",
		"link_url=ws://frame.local:8080", "agent_model=qwen3", "agent_api_key=sk-1234567890")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(out, `Context "glasses" saved`) {
		t.Errorf("set output = %q", out)
	}

	if _, err := execute(t, dir, "config", "context", "set", "desk", "link_url=ws://desk:8080"); err != nil {
		t.Fatalf("set desk: %v", err)
	}
	if _, err := execute(t, dir, "config", "context", "use", "glasses"); err != nil {
		t.Fatalf("use: %v", err)
	}

	out, err = execute(t, dir, "config", "context", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("list output:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], " ") || !strings.Contains(lines[1], "desk") {
		t.Errorf("desk row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "*") || !strings.Contains(lines[2], "glasses") {
		t.Errorf("glasses row = %q", lines[2])
	}

	out, err = execute(t, dir, "config", "context", "show", "-o", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var shown struct {
		Name     string            `json:"name"`
		Settings map[string]string `json:"settings"`
	}
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("show output is not JSON: %v\n%s", err, out)
	}
	if shown.Name != "glasses" || shown.Settings["agent_model"] != "qwen3" {
		t.Errorf("shown = %+v", shown)
	}
	if shown.Settings["agent_api_key"] != cli.MaskAPIKey("sk-1234567890") {
		t.Errorf("api key not masked: %q", shown.Settings["agent_api_key"])
	}

	if _, err := execute(t, dir, "config", "context", "delete", "glasses"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cfg, err := cli.LoadConfigWithPath(appName, filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CurrentContext != "" || len(cfg.Contexts) != 1 {
		t.Errorf("after delete: current=%q contexts=%v", cfg.CurrentContext, cfg.ListContexts())
	}
}

func TestConfigContext_SetUpdates(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, dir, "config", "context", "set", "glasses", "link_url=ws://a", "resend=true"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, dir, "config", "context", "set", "glasses", "link_url=ws://b"); err != nil {
		t.Fatal(err)
	}
	cfg, err := cli.LoadConfigWithPath(appName, filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := cfg.Contexts["glasses"]
	if ctx == nil || ctx.LinkURL != "ws://b" || !ctx.Resend {
		t.Errorf("context = %+v", ctx)
	}
}

func TestConfigContext_SetInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := [][]string{
		{"config", "context", "set", "glasses", "link_url"},
		{"config", "context", "set", "glasses", "volume=11"},
		{"config", "context", "set", "glasses", "reply_timeout=soon"},
	}
	for _, args := range tests {
		if _, err := execute(t, dir, args...); err == nil {
			t.Errorf("%v should fail", args)
		}
	}
}

func TestResolveContext_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, dir, "config", "context", "set", "glasses", "agent_model=qwen3"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, dir, "config", "context", "use", "glasses"); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FRAMEGEAR_AGENT_MODEL", "llama3")

	ctx, err := resolveContext()
	if err != nil {
		t.Fatalf("resolveContext: %v", err)
	}
	if ctx.AgentModel != "llama3" {
		t.Errorf("AgentModel = %q, want env override", ctx.AgentModel)
	}
	if stored := globalConfig.Contexts["glasses"]; stored.AgentModel != "qwen3" {
		t.Errorf("stored context modified: %q", stored.AgentModel)
	}
}

func TestSessionConfig(t *testing.T) {
	paths := &cli.Paths{AppName: appName, HomeDir: "/home/frame"}

	sc := sessionConfig(&cli.Context{
		MessageBase:  0x40,
		AppFile:      "~/app.lua",
		ReplyTimeout: 7,
		WakeWords:    "hey frame, ok glasses",
	}, paths, slog.Default())
	if sc.Base != 0x40 || sc.AppFile != "/home/frame/app.lua" || sc.ReplyTimeout != 7*time.Second {
		t.Errorf("config = %+v", sc)
	}
	if len(sc.WakeWords) != 2 || sc.WakeWords[1] != "ok glasses" {
		t.Errorf("WakeWords = %q", sc.WakeWords)
	}
	if sc.Agent != nil || sc.STT != nil {
		t.Error("agent configured without an endpoint")
	}
	if sc.ImageDir != paths.CaptureDir() {
		t.Errorf("ImageDir = %q", sc.ImageDir)
	}

	sc = sessionConfig(&cli.Context{AgentBaseURL: "http://localhost:11434/v1"}, paths, slog.Default())
	if sc.Agent == nil || sc.STT == nil {
		t.Error("agent endpoint ignored")
	}
}

func TestAgentTools(t *testing.T) {
	t.Setenv(braveEnv, "")
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tools := agentTools(&cli.Context{}, logger)
	if len(tools) != 1 || tools[0].Name != "get_time" {
		t.Errorf("tools without key = %v", toolNames(tools))
	}
	if !strings.Contains(logs.String(), "web search disabled") {
		t.Errorf("missing warning, logs:\n%s", logs.String())
	}

	tools = agentTools(&cli.Context{BraveAPIKey: "BSA-key"}, logger)
	if got := toolNames(tools); !slices.Equal(got, []string{"get_time", "brave_search"}) {
		t.Errorf("tools with key = %v", got)
	}

	t.Setenv(braveEnv, "BSA-env")
	if got := toolNames(agentTools(&cli.Context{}, logger)); len(got) != 2 {
		t.Errorf("tools with %s = %v", braveEnv, got)
	}
}

func toolNames(tools []assistant.Tool) []string {
	var names []string
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}

func TestRun_NoURL(t *testing.T) {
	t.Setenv("FRAMEGEAR_LINK_URL", "")
	_, err := execute(t, t.TempDir(), "run")
	if err == nil || !strings.Contains(err.Error(), "no device address") {
		t.Errorf("run error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "framegear dev") {
		t.Errorf("version output = %q", out)
	}
}
