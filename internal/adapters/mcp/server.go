// Package mcp exposes the controller as an MCP server so an agent runtime
// can drive the game through tools instead of the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/overseer"
	"github.com/aretw0/overseer/internal/control"
	"github.com/aretw0/overseer/internal/session"
	"github.com/aretw0/overseer/pkg/domain"
)

// waitAttempts bounds the context waits issued on behalf of tool calls.
const waitAttempts = 150

// Server wraps a Session and exposes it as an MCP server.
type Server struct {
	sess      *session.Session
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over a started session.
func NewServer(sess *session.Session) *Server {
	s := &Server{
		sess:      sess,
		mcpServer: server.NewMCPServer("overseer-mcp", overseer.Version),
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
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.sess.Logger.Info("MCP server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	// TOOL: game_status
	s.mcpServer.AddTool(mcp.NewTool("game_status",
		mcp.WithDescription("Get the current game state: tick, mode, map, position, health, hostiles."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := s.sess.Snapshot()
		if snap == nil {
			return mcp.NewToolResultError("no snapshot yet; is the game running?"), nil
		}
		jsonBytes, _ := json.Marshal(snap)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: move_to
	moveTool := mcp.NewTool("move_to",
		mcp.WithDescription("Walk or run the player to a tile and report how the attempt ended."),
		mcp.WithNumber("tile", mcp.Required(), mcp.Description("Target tile number")),
		mcp.WithBoolean("run", mcp.Description("Run instead of walk")),
		mcp.WithOutputSchema[control.MoveReport](),
	)
	s.mcpServer.AddTool(moveTool, mcp.NewStructuredToolHandler(s.handleMoveTo))

	// TOOL: travel_to_exit
	exitTool := mcp.NewTool("travel_to_exit",
		mcp.WithDescription("Cross the nearest exit grid to leave the current map."),
		mcp.WithString("destination", mcp.Description("Only consider exits whose destination map name matches")),
		mcp.WithOutputSchema[control.MoveReport](),
	)
	s.mcpServer.AddTool(exitTool, mcp.NewStructuredToolHandler(s.handleTravelToExit))

	// TOOL: auto_combat
	combatTool := mcp.NewTool("auto_combat",
		mcp.WithDescription("Fight the current encounter to its end under the combat autopilot."),
		mcp.WithOutputSchema[control.CombatReport](),
	)
	s.mcpServer.AddTool(combatTool, mcp.NewStructuredToolHandler(s.handleAutoCombat))

	// TOOL: select_dialogue
	dialogueTool := mcp.NewTool("select_dialogue",
		mcp.WithDescription("Pick a dialogue option by its engine index while in a conversation."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Option index as shown in the dialogue frame")),
	)
	s.mcpServer.AddTool(dialogueTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index, err := request.RequireInt("index")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tracker := s.sess.NewTracker()
		after, err := tracker.SelectOption(ctx, index)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("select failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(after)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: await_context
	awaitTool := mcp.NewTool("await_context",
		mcp.WithDescription("Block until the game context matches the given mode (or its prefix)."),
		mcp.WithString("mode", mcp.Required(), mcp.Description("Mode name or prefix, e.g. 'dialogue' or 'combat'")),
	)
	s.mcpServer.AddTool(awaitTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mode, err := request.RequireString("mode")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		snap, err := s.sess.Poller.WaitContextPrefix(ctx, mode, waitAttempts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("wait failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(snap.Mode())), nil
	})

	// TOOL: journal_note
	noteTool := mcp.NewTool("journal_note",
		mcp.WithDescription("Write a note to the journal."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Note category, e.g. 'quest', 'obstacle'")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note body")),
	)
	s.mcpServer.AddTool(noteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := request.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		note := domain.Note{Category: category, Text: text}
		if snap := s.sess.Snapshot(); snap != nil {
			note.Tick = snap.Tick
			if snap.Map != nil {
				note.Map = snap.Map.Name
			}
			if snap.Player != nil {
				note.Tile = snap.Player.Tile
			}
		}
		if err := s.sess.Journal.Note(ctx, note); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("note failed: %v", err)), nil
		}
		return mcp.NewToolResultText("noted"), nil
	})

	// TOOL: journal_recall
	recallTool := mcp.NewTool("journal_recall",
		mcp.WithDescription("Search the journal by keyword, newest first."),
		mcp.WithString("keyword", mcp.Description("Keyword to match against text, category, or map")),
	)
	s.mcpServer.AddTool(recallTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword := request.GetString("keyword", "")
		notes, err := s.sess.Journal.Recall(ctx, keyword)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("recall failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(notes)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleMoveTo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (control.MoveReport, error) {
	tileF, ok := args["tile"].(float64)
	if !ok {
		return control.MoveReport{}, fmt.Errorf("tile must be a number")
	}
	var opts []control.MoveOption
	if run, _ := args["run"].(bool); run {
		opts = append(opts, control.WithRun())
	}
	report, err := s.sess.Navigator.MoveTo(ctx, domain.Tile(int(tileF)), opts...)
	if err != nil {
		return control.MoveReport{}, fmt.Errorf("move failed: %w", err)
	}
	return *report, nil
}

func (s *Server) handleTravelToExit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (control.MoveReport, error) {
	var opts []control.ExitOption
	if dest, _ := args["destination"].(string); dest != "" {
		opts = append(opts, control.WithDestination(dest))
	}
	report, err := s.sess.Navigator.MoveToNearestExit(ctx, opts...)
	if err != nil {
		return control.MoveReport{}, fmt.Errorf("exit travel failed: %w", err)
	}
	return *report, nil
}

func (s *Server) handleAutoCombat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (control.CombatReport, error) {
	report, err := s.sess.Autopilot.Run(ctx)
	if err != nil {
		return control.CombatReport{}, fmt.Errorf("combat failed: %w", err)
	}
	return *report, nil
}

func (s *Server) registerResources() {
	// EXPOSE: overseer://snapshot
	s.mcpServer.AddResource(mcp.NewResource("overseer://snapshot", "Latest Game Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap := s.sess.Snapshot()
		if snap == nil {
			return nil, fmt.Errorf("no snapshot yet")
		}
		jsonBytes, _ := json.Marshal(snap)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "overseer://snapshot",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
