package gameserver

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// callLevel picks the log level for a finished call. Rejected moves and
// unknown games are routine for remote players; only server faults are errors.
func callLevel(code codes.Code) zerolog.Level {
	switch code {
	case codes.OK:
		return zerolog.DebugLevel
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition, codes.Canceled:
		return zerolog.InfoLevel
	case codes.ResourceExhausted, codes.DeadlineExceeded:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// LoggingInterceptor logs each call with the game it touched, when the
// request names one
func LoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	logger = logger.With().Str("component", "grpc").Logger()
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		line := logger.WithLevel(callLevel(code)).
			Str("method", info.FullMethod).
			Stringer("code", code).
			Dur("duration", time.Since(start))
		if st, ok := req.(*structpb.Struct); ok {
			if id := st.GetFields()[fieldGameID].GetStringValue(); id != "" {
				line.Str("game_id", id)
			}
		}
		if err != nil {
			line.Err(err)
		}
		line.Msg("gRPC call")
		return resp, err
	}
}

// RecoveryInterceptor keeps a panicking handler from taking the server down
func RecoveryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error().Str("method", info.FullMethod).Interface("panic", r).Msg("Handler panicked")
			resp, err = nil, status.Error(codes.Internal, "internal server error")
		}()
		return handler(ctx, req)
	}
}

// ServerOptions is the interceptor chain cmd/grpc_server installs.
// Recovery runs innermost so the logger sees codes.Internal.
func ServerOptions(logger zerolog.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(LoggingInterceptor(logger), RecoveryInterceptor(logger)),
	}
}
