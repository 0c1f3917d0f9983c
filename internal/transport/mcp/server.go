package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/grpc/gameserver"
)

const (
	serverName    = "go2048"
	serverVersion = "1.0.0"
	maxBodyBytes  = 1 << 20
)

// Games is the part of the game manager the tools drive
type Games interface {
	CreateGame(player string, seed *int64) (gameserver.GameState, error)
	Move(ctx context.Context, gameID string, code int, requestID string) (gameserver.MoveResult, error)
	GetState(gameID string) (gameserver.GameState, error)
	CloseGame(gameID string) error
}

// Server exposes the remote games as MCP tools
type Server struct {
	games     Games
	mcpServer *server.MCPServer
	logger    zerolog.Logger
}

// NewServer creates an MCP server over games
func NewServer(games Games, logger zerolog.Logger) *Server {
	s := &Server{
		games:  games,
		logger: logger.With().Str("component", "MCPServer").Logger(),
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 - MCP Interface

Slide the tiles of a 4x4 board; equal tiles merge. Reach a 2048 tile to win.
The game ends when no move changes the board or the move budget is spent.

TOOLS:
- new_game: deal a new board, returns its game_id
- move: slide up/right/down/left (or codes 0-3)
- get_state: current board, moves and legal moves
- close_game: drop a game`),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server, e.g. for stdio serving
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by new_game",
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Deal a new game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player": map[string]interface{}{
					"type":        "string",
					"description": "Player profile (optional, server default otherwise)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "RNG seed for a reproducible game (optional)",
				},
			},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide the board in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "right", "down", "left"},
					"description": "Direction to slide",
				},
				"request_id": map[string]interface{}{
					"type":        "string",
					"description": "Makes retries safe: a repeated id is not applied twice",
				},
			},
			Required: []string{"game_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get the current state of a game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handleGetState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "close_game",
		Description: "Drop a game from the server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameIDProperty()},
			Required:   []string{"game_id"},
		},
	}, s.handleCloseGame)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func requireString(args map[string]interface{}, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// parseDirection accepts a name or a numeric code
func parseDirection(v interface{}) (int, error) {
	switch d := v.(type) {
	case string:
		dir, ok := core.DirectionFromName(d)
		if !ok {
			return 0, fmt.Errorf("%w: %q", core.ErrInvalidDirection, d)
		}
		return int(dir), nil
	case float64:
		if d != math.Trunc(d) {
			return 0, fmt.Errorf("%w: %v", core.ErrInvalidDirection, d)
		}
		return int(d), nil
	case nil:
		return 0, fmt.Errorf("direction is required")
	default:
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidDirection, d)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	player, _ := args["player"].(string)

	var seed *int64
	if raw, ok := args["seed"].(float64); ok {
		n := int64(raw)
		seed = &n
	}

	state, err := s.games.CreateGame(player, seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.Debug().Str("game_id", state.GameID).Msg("Game created over MCP")
	return jsonResult(gameserver.StateMap(state))
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, err := requireString(args, "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := parseDirection(args["direction"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	requestID, _ := args["request_id"].(string)

	result, err := s.games.Move(ctx, gameID, code, requestID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	m := gameserver.StateMap(result.State)
	m["moved"] = result.Moved
	return jsonResult(m)
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requireString(arguments(request), "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.games.GetState(gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(gameserver.StateMap(state))
}

func (s *Server) handleCloseGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := requireString(arguments(request), "game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.games.CloseGame(gameID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Closed game %s", gameID)), nil
}

// ServeHTTP answers one JSON-RPC message per POST
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := s.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no response
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal MCP response")
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseData)
}
