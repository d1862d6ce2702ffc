package wire

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "nutrition.v1.BookingService"

// Full method names, as seen by interceptors.
const (
	MethodRegister           = "/" + ServiceName + "/Register"
	MethodLogin              = "/" + ServiceName + "/Login"
	MethodPromoteUser        = "/" + ServiceName + "/PromoteUser"
	MethodCreateAppointment  = "/" + ServiceName + "/CreateAppointment"
	MethodConfirmAppointment = "/" + ServiceName + "/ConfirmAppointment"
	MethodCancelAppointment  = "/" + ServiceName + "/CancelAppointment"
	MethodListMyAppointments = "/" + ServiceName + "/ListMyAppointments"
	MethodListAgenda         = "/" + ServiceName + "/ListAgenda"
)

type BookingServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	PromoteUser(context.Context, *PromoteUserRequest) (*PromoteUserResponse, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*CreateAppointmentResponse, error)
	ConfirmAppointment(context.Context, *AppointmentRequest) (*MessageResponse, error)
	CancelAppointment(context.Context, *AppointmentRequest) (*MessageResponse, error)
	ListMyAppointments(context.Context, *ListMyAppointmentsRequest) (*ListMyAppointmentsResponse, error)
	ListAgenda(context.Context, *ListAgendaRequest) (*ListAgendaResponse, error)
}

// unary builds a method descriptor around one BookingServiceServer method.
func unary[Req any, PReq interface {
	*Req
	Message
}, Resp Message](name string, call func(BookingServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BookingServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(PReq))
			})
		},
	}
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", BookingServiceServer.Register),
		unary("Login", BookingServiceServer.Login),
		unary("PromoteUser", BookingServiceServer.PromoteUser),
		unary("CreateAppointment", BookingServiceServer.CreateAppointment),
		unary("ConfirmAppointment", BookingServiceServer.ConfirmAppointment),
		unary("CancelAppointment", BookingServiceServer.CancelAppointment),
		unary("ListMyAppointments", BookingServiceServer.ListMyAppointments),
		unary("ListAgenda", BookingServiceServer.ListAgenda),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nutrition/v1/booking.proto",
}

// RegisterBookingServiceServer registers srv. The server must be created
// with grpc.ForceServerCodec(Codec{}).
func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func (c *BookingServiceClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *BookingServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.invoke(ctx, MethodRegister, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, MethodLogin, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) PromoteUser(ctx context.Context, in *PromoteUserRequest, opts ...grpc.CallOption) (*PromoteUserResponse, error) {
	out := new(PromoteUserResponse)
	if err := c.invoke(ctx, MethodPromoteUser, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*CreateAppointmentResponse, error) {
	out := new(CreateAppointmentResponse)
	if err := c.invoke(ctx, MethodCreateAppointment, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) ConfirmAppointment(ctx context.Context, in *AppointmentRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	out := new(MessageResponse)
	if err := c.invoke(ctx, MethodConfirmAppointment, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) CancelAppointment(ctx context.Context, in *AppointmentRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	out := new(MessageResponse)
	if err := c.invoke(ctx, MethodCancelAppointment, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) ListMyAppointments(ctx context.Context, in *ListMyAppointmentsRequest, opts ...grpc.CallOption) (*ListMyAppointmentsResponse, error) {
	out := new(ListMyAppointmentsResponse)
	if err := c.invoke(ctx, MethodListMyAppointments, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) ListAgenda(ctx context.Context, in *ListAgendaRequest, opts ...grpc.CallOption) (*ListAgendaResponse, error) {
	out := new(ListAgendaResponse)
	if err := c.invoke(ctx, MethodListAgenda, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
