package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

// Tool is a local function the agent may call.
type Tool struct {
	Name        string
	Description string

	// Parameters is the JSON schema of the arguments. Nil means no
	// arguments.
	Parameters *jsonschema.Schema

	// Call runs the tool with the raw JSON arguments.
	Call func(ctx context.Context, args string) (string, error)
}

// NewFuncTool creates a Tool whose JSON arguments decode into ArgType. The
// parameter schema is derived from ArgType; a jsonschema struct tag gives a
// field its description.
func NewFuncTool[ArgType any](name, description string, fn func(ctx context.Context, arg ArgType) (string, error)) (Tool, error) {
	schema, err := jsonschema.For[ArgType](nil)
	if err != nil {
		return Tool{}, fmt.Errorf("assistant: schema of %s: %w", name, err)
	}
	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
		Call: func(ctx context.Context, args string) (string, error) {
			var arg ArgType
			if args != "" {
				if err := json.Unmarshal([]byte(args), &arg); err != nil {
					return "", fmt.Errorf("unmarshal %q error: %w", args, err)
				}
			}
			return fn(ctx, arg)
		},
	}, nil
}

func (t Tool) param() (openai.ChatCompletionToolParam, error) {
	params := openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	if t.Parameters != nil {
		b, err := json.Marshal(t.Parameters)
		if err != nil {
			return openai.ChatCompletionToolParam{}, fmt.Errorf("assistant: marshal schema of %s: %w", t.Name, err)
		}
		params = nil
		if err := json.Unmarshal(b, &params); err != nil {
			return openai.ChatCompletionToolParam{}, fmt.Errorf("assistant: schema of %s: %w", t.Name, err)
		}
	}
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: param.NewOpt(t.Description),
			Parameters:  params,
		},
	}, nil
}

// TimeTool reports the current local time. A nil now uses time.Now.
func TimeTool(now func() time.Time) Tool {
	if now == nil {
		now = time.Now
	}
	return Tool{
		Name:        "get_time",
		Description: "Get the current time in a human-readable format.",
		Call: func(context.Context, string) (string, error) {
			return now().Format(time.DateTime), nil
		},
	}
}
