// Package mcp exposes kinema sessions as Model Context Protocol tools, so an
// agent can click, set inputs and inspect a running animation.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/presentation/graph"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const sessionURIPrefix = "kinema://sessions/"

// Doer runs fn against the player of a session, serialized with every
// other caller of the same session. session.Manager and the HTTP server
// both satisfy it.
type Doer interface {
	Do(ctx context.Context, sessionID string, fn func(context.Context, *kinema.Player) error) error
}

// Server wraps a Doer and exposes it as an MCP server.
type Server struct {
	sessions  Doer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// SessionInput names the session a tool acts on.
type SessionInput struct {
	Session string `json:"session" jsonschema:"required" jsonschema_description:"Session identifier"`
}

// EventInput is the argument of post_event.
type EventInput struct {
	Session string  `json:"session" jsonschema:"required" jsonschema_description:"Session identifier"`
	Kind    string  `json:"kind" jsonschema:"required,enum=PointerDown,enum=PointerUp,enum=PointerMove,enum=PointerEnter,enum=PointerExit,enum=Click,enum=Custom" jsonschema_description:"Event kind"`
	X       float64 `json:"x,omitempty" jsonschema_description:"Pointer x in animation coordinates"`
	Y       float64 `json:"y,omitempty" jsonschema_description:"Pointer y in animation coordinates"`
	Name    string  `json:"name,omitempty" jsonschema_description:"Custom event name"`
}

// TriggerInput is the argument of set_trigger.
type TriggerInput struct {
	Session string `json:"session" jsonschema:"required" jsonschema_description:"Session identifier"`
	Name    string `json:"name" jsonschema:"required" jsonschema_description:"Input name"`
	Value   string `json:"value,omitempty" jsonschema_description:"New value, parsed by the input type. Ignored for Event inputs"`
}

// SeekInput is the argument of seek.
type SeekInput struct {
	Session string  `json:"session" jsonschema:"required" jsonschema_description:"Session identifier"`
	Frame   float64 `json:"frame" jsonschema:"required" jsonschema_description:"Target frame"`
}

// CommandInput is the argument of command.
type CommandInput struct {
	Session string   `json:"session" jsonschema:"required" jsonschema_description:"Session identifier"`
	Cmd     string   `json:"cmd" jsonschema:"required" jsonschema_description:"Command verb, see help"`
	Args    []string `json:"args,omitempty" jsonschema_description:"Command arguments"`
}

// CommandResult is the output of command.
type CommandResult struct {
	Reply  string        `json:"reply"`
	Status runner.Status `json:"status"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates the MCP server and registers its tools and resources.
func NewServer(sessions Doer, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		logger:   slog.Default(),
		mcpServer: server.NewMCPServer("kinema-mcp", strings.TrimSpace(kinema.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sse.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sse.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("post_event",
		mcp.WithDescription("Post a pointer or custom event to the session's state machine."),
		mcp.WithInputSchema[EventInput](),
		mcp.WithOutputSchema[runner.Status](),
	), s.postEvent)

	s.mcpServer.AddTool(mcp.NewTool("set_trigger",
		mcp.WithDescription("Set a state machine input. Event inputs are fired."),
		mcp.WithInputSchema[TriggerInput](),
		mcp.WithOutputSchema[runner.Status](),
	), s.setTrigger)

	s.mcpServer.AddTool(mcp.NewTool("seek",
		mcp.WithDescription("Move the playhead to a frame without playing."),
		mcp.WithInputSchema[SeekInput](),
		mcp.WithOutputSchema[runner.Status](),
	), s.seek)

	s.mcpServer.AddTool(mcp.NewTool("command",
		mcp.WithDescription("Run a player command such as play, tween or theme. Use cmd=help to list them."),
		mcp.WithInputSchema[CommandInput](),
		mcp.WithOutputSchema[CommandResult](),
	), s.command)

	s.mcpServer.AddTool(mcp.NewTool("inspect",
		mcp.WithDescription("Report playback, state and inputs of a session."),
		mcp.WithInputSchema[SessionInput](),
		mcp.WithOutputSchema[runner.Status](),
	), s.inspect)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the session's state machine as a Mermaid diagram."),
		mcp.WithInputSchema[SessionInput](),
	), s.graph)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURIPrefix+"{id}", "Session status",
		mcp.WithTemplateDescription("Markdown status report of a session"),
		mcp.WithTemplateMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, sessionURIPrefix)
		if id == "" || id == request.Params.URI {
			return nil, fmt.Errorf("%w: bad session uri %q", domain.ErrInvalidParameter, request.Params.URI)
		}
		var report string
		err := s.sessions.Do(ctx, id, func(ctx context.Context, p *kinema.Player) error {
			report = runner.Inspect(p).Markdown()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "text/markdown", Text: report},
		}, nil
	})
}

// apply runs fn against a session and answers with its status. Player
// errors become tool errors, not protocol errors.
func (s *Server) apply(ctx context.Context, tool, session string, fn func(*kinema.Player) error) *mcp.CallToolResult {
	if session == "" {
		return mcp.NewToolResultError("session is required")
	}
	var status runner.Status
	err := s.sessions.Do(ctx, session, func(ctx context.Context, p *kinema.Player) error {
		if err := fn(p); err != nil {
			return err
		}
		status = runner.Inspect(p)
		return nil
	})
	if err != nil {
		s.logger.Warn("MCP tool failed", "tool", tool, "session_id", session, "err", err)
		return mcp.NewToolResultErrorFromErr(tool+" failed", err)
	}
	return mcp.NewToolResultStructured(status, status.String())
}

func (s *Server) postEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input EventInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid post_event arguments", err), nil
	}
	ev, err := domain.ParseEvent(input.Kind, input.X, input.Y, input.Name)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid event", err), nil
	}
	return s.apply(ctx, "post_event", input.Session, func(p *kinema.Player) error {
		return p.StateMachinePostEvent(ev)
	}), nil
}

func (s *Server) setTrigger(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input TriggerInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid set_trigger arguments", err), nil
	}
	clean, err := runner.SanitizeInput(input.Value)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("value rejected", err), nil
	}
	return s.apply(ctx, "set_trigger", input.Session, func(p *kinema.Player) error {
		return runner.SetTrigger(p, input.Name, clean)
	}), nil
}

func (s *Server) seek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SeekInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid seek arguments", err), nil
	}
	return s.apply(ctx, "seek", input.Session, func(p *kinema.Player) error {
		if !p.Seek(input.Frame) {
			return fmt.Errorf("%w: cannot seek to %g", domain.ErrInvalidParameter, input.Frame)
		}
		return nil
	}), nil
}

func (s *Server) command(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input CommandInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid command arguments", err), nil
	}
	if input.Session == "" {
		return mcp.NewToolResultError("session is required"), nil
	}
	cmd := runner.Command{Verb: strings.ToLower(strings.TrimSpace(input.Cmd)), Args: input.Args}
	if cmd.Verb == "quit" || cmd.Verb == "exit" {
		return mcp.NewToolResultError("quit is not available over MCP"), nil
	}

	var result CommandResult
	err := s.sessions.Do(ctx, input.Session, func(ctx context.Context, p *kinema.Player) error {
		reply, err := runner.Apply(p, cmd)
		if err != nil {
			return err
		}
		result = CommandResult{Reply: reply, Status: runner.Inspect(p)}
		return nil
	})
	if errors.Is(err, domain.ErrInvalidParameter) {
		return mcp.NewToolResultErrorFromErr("command rejected", err), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorFromErr("command failed", err), nil
	}
	return mcp.NewToolResultStructured(result, result.Reply), nil
}

func (s *Server) inspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid inspect arguments", err), nil
	}
	return s.apply(ctx, "inspect", input.Session, func(*kinema.Player) error { return nil }), nil
}

func (s *Server) graph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid get_graph arguments", err), nil
	}
	if input.Session == "" {
		return mcp.NewToolResultError("session is required"), nil
	}
	var diagram string
	err := s.sessions.Do(ctx, input.Session, func(ctx context.Context, p *kinema.Player) error {
		def := p.StateMachineDefinition()
		if def == nil {
			return fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
		}
		diagram = graph.GenerateMermaid(def, &graph.Overlay{Current: p.StateMachineCurrentState()})
		return nil
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("get_graph failed", err), nil
	}
	return mcp.NewToolResultText(diagram), nil
}
