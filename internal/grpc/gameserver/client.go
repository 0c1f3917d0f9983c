package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

// Client is a typed wrapper over GameServiceClient
type Client struct {
	raw GameServiceClient
}

// NewClient creates a client on cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{raw: NewGameServiceClient(cc)}
}

// CreateGame starts a game for player; an empty player selects the server default
func (c *Client) CreateGame(ctx context.Context, player string, seed *int64) (GameState, error) {
	fields := map[string]interface{}{}
	if player != "" {
		fields[fieldPlayer] = player
	}
	if seed != nil {
		fields[fieldSeed] = *seed
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return GameState{}, err
	}

	resp, err := c.raw.CreateGame(ctx, req)
	if err != nil {
		return GameState{}, err
	}
	return stateFromStruct(resp)
}

// Move sends one direction. requestID may be empty; a non-empty id makes the
// call safe to retry.
func (c *Client) Move(ctx context.Context, gameID string, d core.Direction, requestID string) (MoveResult, error) {
	fields := map[string]interface{}{
		fieldGameID:    gameID,
		fieldDirection: int(d),
	}
	if requestID != "" {
		fields[fieldRequestID] = requestID
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return MoveResult{}, err
	}

	resp, err := c.raw.Move(ctx, req)
	if err != nil {
		return MoveResult{}, err
	}
	state, err := stateFromStruct(resp)
	if err != nil {
		return MoveResult{}, err
	}
	return MoveResult{State: state, Moved: resp.GetFields()[fieldMoved].GetBoolValue()}, nil
}

// GetState fetches a game's state
func (c *Client) GetState(ctx context.Context, gameID string) (GameState, error) {
	resp, err := c.raw.GetState(ctx, gameIDRequest(gameID))
	if err != nil {
		return GameState{}, err
	}
	return stateFromStruct(resp)
}

// CloseGame drops a game on the server
func (c *Client) CloseGame(ctx context.Context, gameID string) error {
	_, err := c.raw.CloseGame(ctx, gameIDRequest(gameID))
	return err
}

func gameIDRequest(gameID string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldGameID: structpb.NewStringValue(gameID),
	}}
}
