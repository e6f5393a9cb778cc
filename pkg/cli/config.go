package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".giztoy"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
	// EnvPrefix prefixes the environment variables that override a context
	EnvPrefix = "FRAMEGEAR_"
)

// Config holds the named contexts of an app, kubectl style.
type Config struct {
	// AppName is the application name, "framegear" for the host bridge
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one device and agent setup.
type Context struct {
	Name string `yaml:"name"`

	// LinkURL is the websocket address of the device bridge.
	LinkURL string `yaml:"link_url,omitempty"`
	// MessageBase is the first message type byte; zero means 0x30.
	MessageBase int `yaml:"message_base,omitempty"`
	// AppFile is the Lua application uploaded by resend.
	AppFile string `yaml:"app_file,omitempty"`
	// LibDir holds the standard Lua libraries.
	LibDir string `yaml:"lib_dir,omitempty"`
	// WakeWords is a comma separated list.
	WakeWords string `yaml:"wake_words,omitempty"`

	AgentBaseURL string `yaml:"agent_base_url,omitempty"`
	AgentModel   string `yaml:"agent_model,omitempty"`
	AgentAPIKey  string `yaml:"agent_api_key,omitempty"`
	STTModel     string `yaml:"stt_model,omitempty"`
	// BraveAPIKey enables the agent's web search tool.
	BraveAPIKey string `yaml:"brave_api_key,omitempty"`

	// SaveAudio is the WAV path of the microphone archive.
	SaveAudio string `yaml:"save_audio,omitempty"`
	// Resend uploads the application when a session starts.
	Resend bool `yaml:"resend,omitempty"`
	// ReplyTimeout is the console reply timeout in seconds.
	ReplyTimeout int `yaml:"reply_timeout,omitempty"`
	// DevMode enables host side developer commands.
	DevMode bool `yaml:"dev_mode,omitempty"`
}

// ContextKeys lists the settable context keys in display order.
var ContextKeys = []string{
	"link_url",
	"message_base",
	"app_file",
	"lib_dir",
	"wake_words",
	"agent_base_url",
	"agent_model",
	"agent_api_key",
	"stt_model",
	"brave_api_key",
	"save_audio",
	"resend",
	"reply_timeout",
	"dev_mode",
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, appName, DefaultConfigFile)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		ctx.Name = name
	}

	cfg.AppName = appName
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// AddContext adds or replaces a context
func (c *Config) AddContext(name string, ctx *Context) error {
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context. An empty name selects the
// current context, or an empty "default" context when none is set.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{Name: "default"}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns all context names, sorted
func (c *Config) ListContexts() []string {
	return slices.Sorted(maps.Keys(c.Contexts))
}

// Set parses value into the setting key.
func (ctx *Context) Set(key, value string) error {
	var err error
	switch key {
	case "link_url":
		ctx.LinkURL = value
	case "message_base":
		var n int64
		n, err = strconv.ParseInt(value, 0, 16)
		switch {
		case err != nil:
		case n < 0 || n > 0xf9:
			err = fmt.Errorf("out of range")
		default:
			ctx.MessageBase = int(n)
		}
	case "app_file":
		ctx.AppFile = value
	case "lib_dir":
		ctx.LibDir = value
	case "wake_words":
		ctx.WakeWords = value
	case "agent_base_url":
		ctx.AgentBaseURL = value
	case "agent_model":
		ctx.AgentModel = value
	case "agent_api_key":
		ctx.AgentAPIKey = value
	case "stt_model":
		ctx.STTModel = value
	case "brave_api_key":
		ctx.BraveAPIKey = value
	case "save_audio":
		ctx.SaveAudio = value
	case "resend":
		ctx.Resend, err = strconv.ParseBool(value)
	case "reply_timeout":
		ctx.ReplyTimeout, err = strconv.Atoi(value)
	case "dev_mode":
		ctx.DevMode, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return nil
}

// Get returns the setting key formatted for display. API keys are masked.
func (ctx *Context) Get(key string) string {
	switch key {
	case "link_url":
		return ctx.LinkURL
	case "message_base":
		if ctx.MessageBase == 0 {
			return ""
		}
		return fmt.Sprintf("0x%02x", ctx.MessageBase)
	case "app_file":
		return ctx.AppFile
	case "lib_dir":
		return ctx.LibDir
	case "wake_words":
		return ctx.WakeWords
	case "agent_base_url":
		return ctx.AgentBaseURL
	case "agent_model":
		return ctx.AgentModel
	case "agent_api_key":
		return MaskAPIKey(ctx.AgentAPIKey)
	case "stt_model":
		return ctx.STTModel
	case "brave_api_key":
		return MaskAPIKey(ctx.BraveAPIKey)
	case "save_audio":
		return ctx.SaveAudio
	case "resend":
		return strconv.FormatBool(ctx.Resend)
	case "reply_timeout":
		if ctx.ReplyTimeout == 0 {
			return ""
		}
		return strconv.Itoa(ctx.ReplyTimeout)
	case "dev_mode":
		return strconv.FormatBool(ctx.DevMode)
	}
	return ""
}

// Settings returns the non-empty settings for display, keyed by setting
// name.
func (ctx *Context) Settings() map[string]string {
	out := make(map[string]string, len(ContextKeys))
	for _, key := range ContextKeys {
		if v := ctx.Get(key); v != "" && v != "false" {
			out[key] = v
		}
	}
	return out
}

// ApplyEnv overrides settings from FRAMEGEAR_<KEY> variables, for example
// FRAMEGEAR_AGENT_API_KEY. lookup is usually os.LookupEnv.
func (ctx *Context) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, key := range ContextKeys {
		if v, ok := lookup(EnvName(key)); ok {
			if err := ctx.Set(key, v); err != nil {
				return fmt.Errorf("%s: %w", EnvName(key), err)
			}
		}
	}
	return nil
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
