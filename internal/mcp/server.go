// ABOUTME: MCP server exposing coach analytics and workout tools to AI assistants.
// ABOUTME: Wraps the coach service; tools default to the configured user.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/coach/internal/coach"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with the coach service.
type Server struct {
	mcpServer   *mcp.Server
	svc         *coach.Service
	defaultUser string
}

// NewServer creates a new MCP server. defaultUser is used by resources and by
// tools called without a user_id.
func NewServer(svc *coach.Service, defaultUser string) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("coach service required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "coach",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer:   mcpServer,
		svc:         svc,
		defaultUser: defaultUser,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) userOrDefault(userID string) (string, error) {
	if userID != "" {
		return userID, nil
	}
	if s.defaultUser == "" {
		return "", fmt.Errorf("user_id is required (or set a default user with --user or COACH_USER)")
	}
	return s.defaultUser, nil
}
