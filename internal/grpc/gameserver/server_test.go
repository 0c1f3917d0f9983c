package gameserver

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"

	gameengine "github.com/mitchelldurbincs/go2048/internal/game"
	"github.com/mitchelldurbincs/go2048/internal/game/core"
	"github.com/mitchelldurbincs/go2048/internal/testutil"
)

const bufSize = 1024 * 1024

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, cfg ManagerConfig) (*Client, GameServiceClient) {
	t.Helper()
	gm, _ := newTestManager(t, cfg, nil)

	s := grpc.NewServer(ServerOptions(zerolog.Nop())...)
	RegisterGameServiceServer(s, NewServer(gm, zerolog.Nop()))
	conn := serveBufconn(t, s)
	return NewClient(conn), NewGameServiceClient(conn)
}

// serveBufconn serves s in memory and dials it
func serveBufconn(t *testing.T, s *grpc.Server) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(bufSize)

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		lis.Close()
	})
	return conn
}

func TestCreateGame(t *testing.T) {
	client, _ := setupTestServer(t, testManagerConfig())
	ctx := context.Background()

	state, err := client.CreateGame(ctx, "", testutil.Seed(testutil.DefaultSeed))
	require.NoError(t, err)
	assert.NotEmpty(t, state.GameID)
	assert.Equal(t, "remote", state.Player)
	assert.Equal(t, gameengine.InitialTiles, state.Board.TileCount())
	assert.NotEmpty(t, state.LegalMoves)

	again, err := client.CreateGame(ctx, "remote", testutil.Seed(testutil.DefaultSeed))
	require.NoError(t, err)
	assert.NotEqual(t, state.GameID, again.GameID)
	assert.Equal(t, state.Board, again.Board)

	_, err = client.CreateGame(ctx, "ghost", nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMoveAndGetState(t *testing.T) {
	client, _ := setupTestServer(t, testManagerConfig())
	ctx := context.Background()

	state, err := client.CreateGame(ctx, "test", nil)
	require.NoError(t, err)

	var res MoveResult
	current := state
	for i := 0; i < 3; i++ {
		res, err = client.Move(ctx, state.GameID, core.Direction(current.LegalMoves[0]), "")
		require.NoError(t, err)
		require.True(t, res.Moved)
		current = res.State
	}
	assert.True(t, res.State.Over)
	assert.Equal(t, "move_limit", res.State.Outcome)

	got, err := client.GetState(ctx, state.GameID)
	require.NoError(t, err)
	assert.Equal(t, res.State, got)

	_, err = client.Move(ctx, state.GameID, core.Left, "")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestMoveErrors(t *testing.T) {
	client, raw := setupTestServer(t, testManagerConfig())
	ctx := context.Background()

	state, err := client.CreateGame(ctx, "", nil)
	require.NoError(t, err)

	_, err = client.Move(ctx, "missing", core.Up, "")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.Move(ctx, state.GameID, core.Direction(4), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{"missing game id", map[string]interface{}{"direction": 0}},
		{"missing direction", map[string]interface{}{"game_id": state.GameID}},
		{"fractional direction", map[string]interface{}{"game_id": state.GameID, "direction": 1.5}},
		{"unknown direction name", map[string]interface{}{"game_id": state.GameID, "direction": "sideways"}},
		{"game id not a string", map[string]interface{}{"game_id": 3, "direction": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)
			_, err = raw.Move(ctx, req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestMoveByName(t *testing.T) {
	client, raw := setupTestServer(t, testManagerConfig())
	ctx := context.Background()

	state, err := client.CreateGame(ctx, "", nil)
	require.NoError(t, err)

	name := core.Direction(state.LegalMoves[0]).String()
	req, err := structpb.NewStruct(map[string]interface{}{
		"game_id":   state.GameID,
		"direction": name,
	})
	require.NoError(t, err)

	resp, err := raw.Move(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["moved"].GetBoolValue())
	assert.Equal(t, float64(1), resp.GetFields()["moves"].GetNumberValue())
}

func TestCloseGame(t *testing.T) {
	client, _ := setupTestServer(t, testManagerConfig())
	ctx := context.Background()

	state, err := client.CreateGame(ctx, "", nil)
	require.NoError(t, err)

	require.NoError(t, client.CloseGame(ctx, state.GameID))
	_, err = client.GetState(ctx, state.GameID)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, codes.NotFound, status.Code(client.CloseGame(ctx, state.GameID)))
}

func TestCapacityStatus(t *testing.T) {
	cfg := testManagerConfig()
	cfg.MaxGames = 1
	client, _ := setupTestServer(t, cfg)
	ctx := context.Background()

	_, err := client.CreateGame(ctx, "", nil)
	require.NoError(t, err)
	_, err = client.CreateGame(ctx, "", nil)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zerolog.Nop())
	info := &grpc.UnaryServerInfo{FullMethod: methodMove}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingInterceptor(zerolog.New(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: methodGetState}

	req, err := structpb.NewStruct(map[string]interface{}{fieldGameID: "g-1"})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), req, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "game not found")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"game_id":"g-1"`)
	assert.Contains(t, buf.String(), `"code":"NotFound"`)

	buf.Reset()
	_, _ = interceptor(context.Background(), req, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.Internal, "disk full")
	})
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestReflectionDescribesGameService(t *testing.T) {
	gm, _ := newTestManager(t, testManagerConfig(), nil)
	s := grpc.NewServer()
	RegisterGameServiceServer(s, NewServer(gm, zerolog.Nop()))
	reflection.Register(s)
	conn := serveBufconn(t, s)

	stream, err := grpc_reflection_v1.NewServerReflectionClient(conn).ServerReflectionInfo(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Send(&grpc_reflection_v1.ServerReflectionRequest{
		MessageRequest: &grpc_reflection_v1.ServerReflectionRequest_FileContainingSymbol{FileContainingSymbol: ServiceName},
	}))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.Nil(t, resp.GetErrorResponse())

	var methods []string
	for _, raw := range resp.GetFileDescriptorResponse().GetFileDescriptorProto() {
		fdp := &descriptorpb.FileDescriptorProto{}
		require.NoError(t, proto.Unmarshal(raw, fdp))
		if fdp.GetName() != GameService_ServiceDesc.Metadata {
			continue
		}
		require.Len(t, fdp.GetService(), 1)
		for _, m := range fdp.GetService()[0].GetMethod() {
			methods = append(methods, m.GetName())
			assert.Equal(t, ".google.protobuf.Struct", m.GetInputType())
		}
	}
	assert.Equal(t, []string{"CreateGame", "Move", "GetState", "CloseGame"}, methods)
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, toStatus(nil))
	assert.Equal(t, codes.NotFound, status.Code(toStatus(ErrGameNotFound)))
	assert.Equal(t, codes.ResourceExhausted, status.Code(toStatus(ErrAtCapacity)))
	assert.Equal(t, codes.InvalidArgument, status.Code(toStatus(ErrBadRequest)))
	assert.Equal(t, codes.InvalidArgument, status.Code(toStatus(core.ErrInvalidDirection)))
	assert.Equal(t, codes.FailedPrecondition, status.Code(toStatus(core.ErrGameOver)))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
}
