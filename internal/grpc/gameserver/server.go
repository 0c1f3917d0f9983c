package gameserver

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

// Server implements GameServiceServer on top of a GameManager
type Server struct {
	gameManager *GameManager
	logger      zerolog.Logger
}

// NewServer creates a new game server
func NewServer(gameManager *GameManager, logger zerolog.Logger) *Server {
	return &Server{
		gameManager: gameManager,
		logger:      logger.With().Str("component", "GameServer").Logger(),
	}
}

// GameManager returns the manager behind the server
func (s *Server) GameManager() *GameManager { return s.gameManager }

// CreateGame deals a new game
func (s *Server) CreateGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	player, seed, err := parseCreateRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}

	state, err := s.gameManager.CreateGame(player, seed)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.encode(stateToStruct(state))
}

// Move applies one direction to a game
func (s *Server) Move(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gameID, code, requestID, err := parseMoveRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Debug().
		Str("game_id", gameID).
		Int("direction", code).
		Str("request_id", requestID).
		Msg("Received move")

	result, err := s.gameManager.Move(ctx, gameID, code, requestID)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.encode(moveResultToStruct(result))
}

// GetState returns the current state of a game
func (s *Server) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	gameID, err := parseGameID(req)
	if err != nil {
		return nil, toStatus(err)
	}

	state, err := s.gameManager.GetState(gameID)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.encode(stateToStruct(state))
}

// CloseGame drops a game from the server
func (s *Server) CloseGame(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	gameID, err := parseGameID(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.gameManager.CloseGame(gameID); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) encode(st *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return st, nil
}

// toStatus maps package and engine errors to gRPC status codes
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrGameNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrAtCapacity):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrUnknownPlayer),
		errors.Is(err, core.ErrInvalidDirection):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrGameOver):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
