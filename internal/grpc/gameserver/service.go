package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "go2048.v1.GameService"

// protoFile is the descriptor path server reflection resolves the service by
const protoFile = "go2048/v1/game.proto"

// The service has no generated code, so its descriptor is built here and
// registered globally for grpc reflection.
func init() {
	structType := "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())
	emptyType := "." + string((&emptypb.Empty{}).ProtoReflect().Descriptor().FullName())
	method := func(name, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structType),
			OutputType: proto.String(out),
		}
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(protoFile),
		Package: proto.String("go2048.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			structpb.File_google_protobuf_struct_proto.Path(),
			emptypb.File_google_protobuf_empty_proto.Path(),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("GameService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("CreateGame", structType),
				method("Move", structType),
				method("GetState", structType),
				method("CloseGame", emptyType),
			},
		}},
	}

	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
}

const (
	methodCreateGame = "/" + ServiceName + "/CreateGame"
	methodMove       = "/" + ServiceName + "/Move"
	methodGetState   = "/" + ServiceName + "/GetState"
	methodCloseGame  = "/" + ServiceName + "/CloseGame"
)

// GameServiceServer is the server API for the game service. Requests and
// state responses are google.protobuf.Struct messages; the field names are
// documented on the request helpers in converters.go.
type GameServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Move(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseGame(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// RegisterGameServiceServer registers srv with s
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}

func unaryHandler(
	method string,
	call func(GameServiceServer, context.Context, *structpb.Struct) (interface{}, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GameService_ServiceDesc is the grpc.ServiceDesc for the game service
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateGame",
			Handler: unaryHandler(methodCreateGame, func(s GameServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.CreateGame(ctx, in)
			}),
		},
		{
			MethodName: "Move",
			Handler: unaryHandler(methodMove, func(s GameServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.Move(ctx, in)
			}),
		},
		{
			MethodName: "GetState",
			Handler: unaryHandler(methodGetState, func(s GameServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.GetState(ctx, in)
			}),
		},
		{
			MethodName: "CloseGame",
			Handler: unaryHandler(methodCloseGame, func(s GameServiceServer, ctx context.Context, in *structpb.Struct) (interface{}, error) {
				return s.CloseGame(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

// GameServiceClient is the client API for the game service
type GameServiceClient interface {
	CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Move(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CloseGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type gameServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGameServiceClient creates a raw client on cc
func NewGameServiceClient(cc grpc.ClientConnInterface) GameServiceClient {
	return &gameServiceClient{cc}
}

func (c *gameServiceClient) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodCreateGame, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gameServiceClient) Move(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodMove, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gameServiceClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetState, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gameServiceClient) CloseGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, methodCloseGame, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
