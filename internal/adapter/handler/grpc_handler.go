package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/campus-canteen/internal/core/service"
)

const (
	dispatcherServiceName = "canteen.v1.Dispatcher"
	dispatchMethod        = "/" + dispatcherServiceName + "/Dispatch"
)

type CommandRequest struct {
	Command string            `json:"command"`
	Params  map[string]string `json:"params,omitempty"`
}

type CommandResponse struct {
	Result string `json:"result"`
}

// DispatcherServer is the server API for the canteen.v1.Dispatcher service.
type DispatcherServer interface {
	Dispatch(ctx context.Context, req *CommandRequest) (*CommandResponse, error)
}

type GRPCHandler struct {
	dispatcher CommandDispatcher
}

func NewGRPCHandler(dispatcher CommandDispatcher) *GRPCHandler {
	return &GRPCHandler{dispatcher: dispatcher}
}

// Dispatch always succeeds at the RPC level; domain failures, an empty command
// included, travel in Result.
func (h *GRPCHandler) Dispatch(ctx context.Context, req *CommandRequest) (*CommandResponse, error) {
	params := make(map[string]string, len(req.GetParams()))
	for k, v := range req.GetParams() {
		params[k] = v
	}

	result := h.dispatcher.Dispatch(ctx, service.NewRequest(req.GetCommand(), params))
	return &CommandResponse{Result: result}, nil
}

func (r *CommandRequest) GetCommand() string {
	if r == nil {
		return ""
	}
	return r.Command
}

func (r *CommandRequest) GetParams() map[string]string {
	if r == nil {
		return nil
	}
	return r.Params
}

func RegisterDispatcherServer(s grpc.ServiceRegistrar, srv DispatcherServer) {
	s.RegisterService(&dispatcherServiceDesc, srv)
}

func dispatchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).Dispatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: dispatchMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).Dispatch(ctx, req.(*CommandRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var dispatcherServiceDesc = grpc.ServiceDesc{
	ServiceName: dispatcherServiceName,
	HandlerType: (*DispatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Dispatch",
			Handler:    dispatchHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "canteen/v1/dispatcher",
}

// GRPCClient calls a remote dispatcher.
type GRPCClient struct {
	conn grpc.ClientConnInterface
}

func NewGRPCClient(conn grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{conn: conn}
}

func (c *GRPCClient) Dispatch(ctx context.Context, command string, params map[string]string, opts ...grpc.CallOption) (string, error) {
	out := new(CommandResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.conn.Invoke(ctx, dispatchMethod, &CommandRequest{Command: command, Params: params}, out, opts...); err != nil {
		return "", err
	}
	return out.Result, nil
}
