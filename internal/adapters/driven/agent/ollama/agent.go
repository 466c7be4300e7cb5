// Package ollama provides a tool-calling reasoning agent backed by Ollama.
//
// The agent runs a bounded chat loop: each model turn may request tool
// calls, which are executed over an MCP client session and fed back as
// "tool" messages, until the model answers in plain content or the step
// budget is spent.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ollama/ollama/api"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
	"github.com/custodia-labs/styleaudit/internal/logger"
)

// Ensure Agent implements the interfaces.
var (
	_ driven.ReasoningAgent = (*Agent)(nil)
	_ driven.Pinger         = (*Agent)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultModel    = "llama3.1"
	DefaultMaxSteps = 6
	DefaultTimeout  = 5 * time.Minute
)

// ChatClient is the subset of *api.Client the agent uses.
type ChatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
	Show(ctx context.Context, req *api.ShowRequest) (*api.ShowResponse, error)
	Heartbeat(ctx context.Context) error
}

// ToolSession is the subset of *mcp.ClientSession the agent uses.
type ToolSession interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
}

// Config holds configuration for the agent.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model (default: llama3.1). It must support tool calling.
	Model string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxSteps bounds the model turns per invocation (default: 6).
	MaxSteps int

	// JSONFormat constrains model output to JSON.
	JSONFormat bool

	// Timeout bounds each chat request (default: 5m).
	Timeout time.Duration
}

// Agent is a driven.ReasoningAgent over Ollama's chat API.
type Agent struct {
	client   ChatClient
	tools    ToolSession
	prompts  driven.PromptStore
	model    string
	options  map[string]any
	maxSteps int
	format   json.RawMessage

	mu          sync.Mutex
	ollamaTools api.Tools
}

// New creates an agent talking to the Ollama server at cfg.BaseURL.
func New(cfg Config, tools ToolSession, prompts driven.PromptStore) (*Agent, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", cfg.BaseURL, err)
	}

	client := api.NewClient(base, &http.Client{Timeout: cfg.Timeout})
	return NewWithClient(cfg, client, tools, prompts)
}

// NewWithClient creates an agent over an existing chat client.
func NewWithClient(cfg Config, client ChatClient, tools ToolSession, prompts driven.PromptStore) (*Agent, error) {
	if client == nil || tools == nil || prompts == nil {
		return nil, fmt.Errorf("%w: agent needs a chat client, a tool session and prompts", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}

	a := &Agent{
		client:   client,
		tools:    tools,
		prompts:  prompts,
		model:    cfg.Model,
		maxSteps: cfg.MaxSteps,
		options:  map[string]any{"temperature": cfg.Temperature},
	}
	if cfg.JSONFormat {
		a.format = json.RawMessage(`"json"`)
	}
	return a, nil
}

// ModelName returns the chat model.
func (a *Agent) ModelName() string {
	return a.model
}

// Ping checks the Ollama server is up and the model is installed.
func (a *Agent) Ping(ctx context.Context) error {
	if err := a.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAgentUnavailable, err)
	}
	if _, err := a.client.Show(ctx, &api.ShowRequest{Model: a.model}); err != nil {
		return fmt.Errorf("%w: model %q: %w", domain.ErrAgentUnavailable, a.model, err)
	}
	return nil
}

// Invoke runs the chat loop for one context window.
func (a *Agent) Invoke(ctx context.Context, input string, sink driven.StatusSink) (string, []domain.ToolInvocation, error) {
	messages, err := a.openingMessages(input)
	if err != nil {
		return "", nil, err
	}

	tools, err := a.listTools(ctx)
	if err != nil {
		return "", nil, err
	}

	var trace []domain.ToolInvocation
	for step := 0; step < a.maxSteps; step++ {
		reply, err := a.chat(ctx, messages, tools)
		if err != nil {
			return "", trace, err
		}
		messages = append(messages, reply)

		if len(reply.ToolCalls) == 0 {
			return reply.Content, trace, nil
		}

		for _, call := range reply.ToolCalls {
			inv := invocationFor(call)
			trace = append(trace, inv)
			messages = append(messages, api.Message{
				Role:    "tool",
				Content: a.runTool(ctx, call, inv, sink),
			})
		}
	}

	logger.Debug("agent: step budget of %d spent, asking for a final answer", a.maxSteps)
	messages = append(messages, api.Message{
		Role:    "user",
		Content: "Stop searching. Give your final answer now as the JSON object.",
	})
	reply, err := a.chat(ctx, messages, nil)
	if err != nil {
		return "", trace, err
	}
	return reply.Content, trace, nil
}

func (a *Agent) openingMessages(input string) ([]api.Message, error) {
	system, err := a.prompts.Load(driven.PromptAuditSystem)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}
	request, err := a.prompts.Load(driven.PromptAuditRequest)
	if err != nil {
		return nil, fmt.Errorf("load request prompt: %w", err)
	}
	if strings.Contains(request, "%s") {
		request = fmt.Sprintf(request, input)
	} else {
		request = request + "\n\n" + input
	}

	return []api.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: request},
	}, nil
}

// chat sends one non-streaming request and returns the assistant message.
func (a *Agent) chat(ctx context.Context, messages []api.Message, tools api.Tools) (api.Message, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   &stream,
		Format:   a.format,
		Tools:    tools,
		Options:  a.options,
	}

	var reply api.Message
	err := a.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.Role = resp.Message.Role
		reply.Content += resp.Message.Content
		reply.ToolCalls = append(reply.ToolCalls, resp.Message.ToolCalls...)
		return nil
	})
	if err != nil {
		return api.Message{}, classify(err)
	}
	if reply.Role == "" {
		reply.Role = "assistant"
	}
	return reply, nil
}

// listTools converts the session's MCP tools to Ollama function tools once.
func (a *Agent) listTools(ctx context.Context) (api.Tools, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ollamaTools != nil {
		return a.ollamaTools, nil
	}

	result, err := a.tools.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	tools := make(api.Tools, 0, len(result.Tools))
	for _, t := range result.Tools {
		converted, err := convertTool(t)
		if err != nil {
			logger.Warn("agent: skipping tool %s: %v", t.Name, err)
			continue
		}
		tools = append(tools, converted)
	}
	a.ollamaTools = tools
	return tools, nil
}

// runTool executes one tool call. Failures are returned to the model as text.
func (a *Agent) runTool(ctx context.Context, call api.ToolCall, inv domain.ToolInvocation, sink driven.StatusSink) string {
	name := call.Function.Name
	if name == domain.SearchToolName {
		driven.Notify(sink, fmt.Sprintf("Searching style guides for %q...", inv.Query))
	} else {
		driven.Notify(sink, fmt.Sprintf("Calling tool %s...", name))
	}

	result, err := a.tools.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: map[string]any(call.Function.Arguments),
	})

	driven.Notify(sink, fmt.Sprintf("Tool %s finished", name))

	if err != nil {
		logger.Warn("agent: tool %s failed: %v", name, err)
		return fmt.Sprintf("Error calling tool %s: %v", name, err)
	}
	return resultText(result)
}

// invocationFor records a tool call in trace form.
func invocationFor(call api.ToolCall) domain.ToolInvocation {
	args := call.Function.Arguments
	inv := domain.ToolInvocation{Tool: call.Function.Name}

	if q, ok := args["query"].(string); ok {
		inv.Query = q
	}
	switch k := args["top_k"].(type) {
	case float64:
		inv.TopK = int(k)
	case int:
		inv.TopK = k
	case string:
		inv.TopK, _ = strconv.Atoi(k)
	}
	return inv
}

// convertTool maps an MCP tool definition to an Ollama function tool.
func convertTool(t *mcp.Tool) (api.Tool, error) {
	params := t.InputSchema
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	raw, err := json.Marshal(map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"parameters":  params,
		},
	})
	if err != nil {
		return api.Tool{}, fmt.Errorf("marshal tool: %w", err)
	}

	var tool api.Tool
	if err := json.Unmarshal(raw, &tool); err != nil {
		return api.Tool{}, fmt.Errorf("convert tool schema: %w", err)
	}
	return tool, nil
}

// resultText concatenates the text content of a tool result.
func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// classify maps transport failures to domain.ErrAgentUnavailable.
// Errors reported by a reachable server are returned as-is.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", domain.ErrAgentUnavailable, err)
		}
		return fmt.Errorf("ollama chat: %w", err)
	}
	return fmt.Errorf("%w: %w", domain.ErrAgentUnavailable, err)
}
