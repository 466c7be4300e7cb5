package ollama

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// clientImplementation identifies the agent to MCP servers.
var clientImplementation = &mcp.Implementation{Name: "styleaudit-agent", Version: "0.1.0"}

// Session is a connected MCP tool session plus its teardown.
type Session struct {
	*mcp.ClientSession
	closeFn func() error
}

// Close ends the session and stops whatever serves it.
func (s *Session) Close() error {
	return s.closeFn()
}

// ConnectInProcess connects to server over in-memory transports.
// The server keeps running until the returned session is closed.
func ConnectInProcess(ctx context.Context, server *mcp.Server) (*Session, error) {
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("start in-process tool server: %w", err)
	}

	client := mcp.NewClient(clientImplementation, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		_ = serverSession.Close()
		return nil, fmt.Errorf("connect to in-process tool server: %w", err)
	}

	return &Session{
		ClientSession: clientSession,
		closeFn: func() error {
			return errors.Join(clientSession.Close(), serverSession.Wait())
		},
	}, nil
}

// ConnectCommand starts commandLine as an MCP server over stdio and connects to it.
// The command line is split on whitespace.
func ConnectCommand(ctx context.Context, commandLine string) (*Session, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("empty tool server command")
	}

	cmd := exec.Command(fields[0], fields[1:]...) //nolint:gosec // command comes from user config
	client := mcp.NewClient(clientImplementation, nil)

	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("start tool server %q: %w", fields[0], err)
	}

	return &Session{
		ClientSession: session,
		closeFn:       session.Close,
	}, nil
}
