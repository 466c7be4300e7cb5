package ollama

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// fakeChat replays scripted assistant messages and records requests.
type fakeChat struct {
	mu           sync.Mutex
	replies      []api.Message
	err          error
	heartbeatErr error
	showErr      error
	requests     []*api.ChatRequest
}

func (f *fakeChat) Chat(_ context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	if len(f.replies) == 0 {
		return errors.New("no scripted reply")
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return fn(api.ChatResponse{Message: reply, Done: true})
}

func (f *fakeChat) Show(context.Context, *api.ShowRequest) (*api.ShowResponse, error) {
	if f.showErr != nil {
		return nil, f.showErr
	}
	return &api.ShowResponse{}, nil
}

func (f *fakeChat) Heartbeat(context.Context) error {
	return f.heartbeatErr
}

type fakePrompts struct{}

func (fakePrompts) Load(name string) (string, error) {
	switch name {
	case driven.PromptAuditSystem:
		return "system prompt", nil
	case driven.PromptAuditRequest:
		return "Audit:\n%s", nil
	}
	return "", errors.New("unknown prompt")
}

func (fakePrompts) Reload() {}

type searchArgs struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// newToolSession serves a search tool in-process that echoes its query.
func newToolSession(t *testing.T) *Session {
	t.Helper()

	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        domain.SearchToolName,
		Description: "Search the style guides",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in searchArgs) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Source: voice\nresult for " + in.Query}},
		}, nil, nil
	})

	session, err := ConnectInProcess(context.Background(), server)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func toolCall(name, query string, topK any) api.ToolCall {
	args := api.ToolCallFunctionArguments{"query": query}
	if topK != nil {
		args["top_k"] = topK
	}
	return api.ToolCall{Function: api.ToolCallFunction{Name: name, Arguments: args}}
}

func newTestAgent(t *testing.T, chat *fakeChat, cfg Config) *Agent {
	t.Helper()
	agent, err := NewWithClient(cfg, chat, newToolSession(t), fakePrompts{})
	require.NoError(t, err)
	return agent
}

func TestInvoke_ToolLoop(t *testing.T) {
	chat := &fakeChat{replies: []api.Message{
		{Role: "assistant", ToolCalls: []api.ToolCall{toolCall(domain.SearchToolName, "passive voice", float64(3))}},
		{Role: "assistant", Content: `{"feedback":"ok","proposed_text":"We ship it."}`},
	}}
	agent := newTestAgent(t, chat, Config{Model: "m", JSONFormat: true})

	var statuses []string
	sink := driven.StatusFunc(func(msg string) { statuses = append(statuses, msg) })

	out, trace, err := agent.Invoke(context.Background(), "[CURRENT] (paragraph)\nIt is shipped.", sink)
	require.NoError(t, err)

	assert.Equal(t, `{"feedback":"ok","proposed_text":"We ship it."}`, out)
	assert.Equal(t, []domain.ToolInvocation{{Tool: domain.SearchToolName, Query: "passive voice", TopK: 3}}, trace)
	assert.Equal(t, []string{
		`Searching style guides for "passive voice"...`,
		"Tool search_style_guides finished",
	}, statuses)

	require.Len(t, chat.requests, 2)
	first := chat.requests[0]
	assert.Equal(t, "m", first.Model)
	assert.Equal(t, "system", first.Messages[0].Role)
	assert.Equal(t, "Audit:\n[CURRENT] (paragraph)\nIt is shipped.", first.Messages[1].Content)
	require.Len(t, first.Tools, 1)
	assert.Equal(t, domain.SearchToolName, first.Tools[0].Function.Name)
	assert.JSONEq(t, `"json"`, string(first.Format))
	require.NotNil(t, first.Stream)
	assert.False(t, *first.Stream)

	second := chat.requests[1]
	last := second.Messages[len(second.Messages)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Contains(t, last.Content, "result for passive voice")
}

func TestInvoke_DirectAnswer(t *testing.T) {
	chat := &fakeChat{replies: []api.Message{{Role: "assistant", Content: "answer"}}}
	agent := newTestAgent(t, chat, Config{})

	out, trace, err := agent.Invoke(context.Background(), "text", nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Empty(t, trace)
	assert.Nil(t, chat.requests[0].Format)
	assert.Equal(t, DefaultModel, agent.ModelName())
}

func TestInvoke_StepBudget(t *testing.T) {
	chat := &fakeChat{replies: []api.Message{
		{Role: "assistant", ToolCalls: []api.ToolCall{toolCall(domain.SearchToolName, "a", nil)}},
		{Role: "assistant", ToolCalls: []api.ToolCall{toolCall(domain.SearchToolName, "b", nil)}},
		{Role: "assistant", Content: "final"},
	}}
	agent := newTestAgent(t, chat, Config{MaxSteps: 2})

	out, trace, err := agent.Invoke(context.Background(), "text", nil)
	require.NoError(t, err)
	assert.Equal(t, "final", out)
	require.Len(t, trace, 2)
	assert.Equal(t, "a", trace[0].Query)
	assert.Equal(t, "b", trace[1].Query)

	require.Len(t, chat.requests, 3)
	assert.Empty(t, chat.requests[2].Tools)
}

func TestInvoke_UnknownToolReportedToModel(t *testing.T) {
	chat := &fakeChat{replies: []api.Message{
		{Role: "assistant", ToolCalls: []api.ToolCall{toolCall("delete_everything", "x", nil)}},
		{Role: "assistant", Content: "done"},
	}}
	agent := newTestAgent(t, chat, Config{})

	out, trace, err := agent.Invoke(context.Background(), "text", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	require.Len(t, trace, 1)
	assert.Equal(t, "delete_everything", trace[0].Tool)

	msgs := chat.requests[1].Messages
	assert.Equal(t, "tool", msgs[len(msgs)-1].Role)
	assert.NotEmpty(t, msgs[len(msgs)-1].Content)
}

func TestInvoke_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"connection refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), true},
		{"model missing", api.StatusError{StatusCode: http.StatusNotFound, ErrorMessage: "model not found"}, true},
		{"server error", api.StatusError{StatusCode: http.StatusInternalServerError, ErrorMessage: "boom"}, false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := newTestAgent(t, &fakeChat{err: tt.err}, Config{})
			_, _, err := agent.Invoke(context.Background(), "text", nil)
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, errors.Is(err, domain.ErrAgentUnavailable))
		})
	}
}

func TestPing(t *testing.T) {
	agent := newTestAgent(t, &fakeChat{}, Config{})
	assert.NoError(t, agent.Ping(context.Background()))

	agent = newTestAgent(t, &fakeChat{heartbeatErr: errors.New("refused")}, Config{})
	assert.ErrorIs(t, agent.Ping(context.Background()), domain.ErrAgentUnavailable)

	agent = newTestAgent(t, &fakeChat{showErr: errors.New("not found")}, Config{})
	assert.ErrorIs(t, agent.Ping(context.Background()), domain.ErrAgentUnavailable)
}

func TestNewWithClient_RequiresCollaborators(t *testing.T) {
	_, err := NewWithClient(Config{}, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_ParsesURL(t *testing.T) {
	_, err := New(Config{BaseURL: "://bad"}, newToolSession(t), fakePrompts{})
	assert.Error(t, err)

	agent, err := New(Config{}, newToolSession(t), fakePrompts{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSteps, agent.maxSteps)
}

func TestInvocationFor(t *testing.T) {
	tests := []struct {
		name string
		topK any
		want int
	}{
		{"float", float64(4), 4},
		{"int", 2, 2},
		{"string", "7", 7},
		{"missing", nil, 0},
		{"garbage", "many", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := invocationFor(toolCall(domain.SearchToolName, "q", tt.topK))
			assert.Equal(t, "q", inv.Query)
			assert.Equal(t, tt.want, inv.TopK)
		})
	}
}

func TestResultText(t *testing.T) {
	assert.Empty(t, resultText(nil))
	assert.Equal(t, "a\nb", resultText(&mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: "a"},
		&mcp.TextContent{Text: "b"},
	}}))
}
