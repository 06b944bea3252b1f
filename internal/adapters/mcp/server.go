// Package mcp exposes the studio pipeline to MCP clients: agents can read
// and replace the configuration, trigger generation runs, and inspect the
// resulting artifact set.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/ergoweb"
	"github.com/aretw0/ergoweb/pkg/domain"
)

// Workspace defines the pipeline surface the MCP server consumes.
type Workspace interface {
	Config() domain.Configuration
	SetConfig(ctx context.Context, raw string) error
	Generate(ctx context.Context) (uint64, error)
	CurrentArtifacts() (*domain.ArtifactSet, bool)
	WaitForArtifacts(ctx context.Context) (*domain.ArtifactSet, error)
}

// GenerateResponse is the structured result of a generation tool call.
type GenerateResponse struct {
	Seq       uint64   `json:"seq" jsonschema_description:"Sequence number of the generation run"`
	Artifacts []string `json:"artifacts" jsonschema_description:"Names of the produced artifacts"`
}

// ArtifactsResponse is the structured result of the artifact listing tool.
type ArtifactsResponse struct {
	Seq       uint64   `json:"seq" jsonschema_description:"Sequence number of the run that produced the set"`
	Artifacts []string `json:"artifacts" jsonschema_description:"Names of the current artifacts"`
}

// Server wraps the studio workspace and exposes it as an MCP server.
type Server struct {
	ws        Workspace
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(ws Workspace) *Server {
	s := &Server{
		ws:        ws,
		mcpServer: server.NewMCPServer("ergoweb-mcp", strings.TrimSpace(ergoweb.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_config
	s.mcpServer.AddTool(mcp.NewTool("get_config",
		mcp.WithDescription("Get the current ergogen configuration source."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg := s.ws.Config()
		if cfg.Empty() {
			return mcp.NewToolResultText(""), nil
		}
		return mcp.NewToolResultText(cfg.Raw), nil
	})

	// TOOL: set_config
	setTool := mcp.NewTool("set_config",
		mcp.WithDescription("Replace the ergogen configuration. The source is validated, persisted, and a generation run is submitted for it."),
		mcp.WithString("config", mcp.Required(), mcp.Description("Configuration source (YAML or JSON)")),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(setTool, mcp.NewStructuredToolHandler(s.handleSetConfig))

	// TOOL: generate
	generateTool := mcp.NewTool("generate",
		mcp.WithDescription("Run generation for the current configuration and wait for the artifact set."),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	// TOOL: list_artifacts
	listTool := mcp.NewTool("list_artifacts",
		mcp.WithDescription("List the artifacts of the most recently completed generation run."),
		mcp.WithOutputSchema[ArtifactsResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListArtifacts))

	// TOOL: get_artifact
	s.mcpServer.AddTool(mcp.NewTool("get_artifact",
		mcp.WithDescription("Fetch a single artifact by name from the current set. Text artifacts are returned verbatim."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Artifact name, e.g. demo.svg")),
	), s.handleGetArtifact)
}

// Handler methods for structured tools

func (s *Server) handleSetConfig(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	raw, _ := args["config"].(string)

	if err := s.ws.SetConfig(ctx, raw); err != nil {
		return GenerateResponse{}, fmt.Errorf("set config failed: %w", err)
	}

	return s.awaitArtifacts(ctx)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	if _, err := s.ws.Generate(ctx); err != nil {
		return GenerateResponse{}, fmt.Errorf("generate failed: %w", err)
	}
	return s.awaitArtifacts(ctx)
}

func (s *Server) awaitArtifacts(ctx context.Context) (GenerateResponse, error) {
	set, err := s.ws.WaitForArtifacts(ctx)
	if err != nil {
		return GenerateResponse{}, err
	}
	return GenerateResponse{Seq: set.Seq, Artifacts: set.Names()}, nil
}

func (s *Server) handleListArtifacts(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ArtifactsResponse, error) {
	set, ok := s.ws.CurrentArtifacts()
	if !ok {
		return ArtifactsResponse{}, fmt.Errorf("no generation has completed yet")
	}
	return ArtifactsResponse{Seq: set.Seq, Artifacts: set.Names()}, nil
}

func (s *Server) handleGetArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")

	set, ok := s.ws.CurrentArtifacts()
	if !ok {
		return mcp.NewToolResultError("no generation has completed yet"), nil
	}

	a, ok := set.Find(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("artifact not found: %s", name)), nil
	}

	if strings.HasPrefix(a.MIMEType, "text/") || strings.Contains(a.MIMEType, "svg") {
		return mcp.NewToolResultText(string(a.Content)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("binary artifact %s (%s, %d bytes); download it over HTTP", a.Name, a.MIMEType, len(a.Content))), nil
}

func (s *Server) registerResources() {
	// EXPOSE: ergoweb://config
	s.mcpServer.AddResource(mcp.NewResource("ergoweb://config", "Current Configuration",
		mcp.WithMIMEType("text/yaml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "ergoweb://config",
				MIMEType: "text/yaml",
				Text:     s.ws.Config().Raw,
			},
		}, nil
	})

	// EXPOSE: ergoweb://artifacts
	s.mcpServer.AddResource(mcp.NewResource("ergoweb://artifacts", "Current Artifact Listing",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		set, ok := s.ws.CurrentArtifacts()
		if !ok {
			return nil, fmt.Errorf("no generation has completed yet")
		}
		jsonBytes, _ := json.Marshal(ArtifactsResponse{Seq: set.Seq, Artifacts: set.Names()})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "ergoweb://artifacts",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
