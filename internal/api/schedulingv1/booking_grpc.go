package schedulingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const BookingServiceName = "salon.scheduling.v1.BookingService"

const (
	BookingService_AvailableSlots_FullMethodName   = "/" + BookingServiceName + "/AvailableSlots"
	BookingService_EffectiveHours_FullMethodName   = "/" + BookingServiceName + "/EffectiveHours"
	BookingService_Book_FullMethodName             = "/" + BookingServiceName + "/Book"
	BookingService_Block_FullMethodName            = "/" + BookingServiceName + "/Block"
	BookingService_Unblock_FullMethodName          = "/" + BookingServiceName + "/Unblock"
	BookingService_Cancel_FullMethodName           = "/" + BookingServiceName + "/Cancel"
	BookingService_Reschedule_FullMethodName       = "/" + BookingServiceName + "/Reschedule"
	BookingService_Complete_FullMethodName         = "/" + BookingServiceName + "/Complete"
	BookingService_GetAppointment_FullMethodName   = "/" + BookingServiceName + "/GetAppointment"
	BookingService_ListAppointments_FullMethodName = "/" + BookingServiceName + "/ListAppointments"
)

type BookingServiceServer interface {
	AvailableSlots(context.Context, *AvailableSlotsRequest) (*AvailableSlotsResponse, error)
	EffectiveHours(context.Context, *EffectiveHoursRequest) (*EffectiveHoursResponse, error)
	Book(context.Context, *BookRequest) (*BookResponse, error)
	Block(context.Context, *BlockRequest) (*BlockResponse, error)
	Unblock(context.Context, *UnblockRequest) (*UnblockResponse, error)
	Cancel(context.Context, *CancelRequest) (*CancelResponse, error)
	Reschedule(context.Context, *RescheduleRequest) (*RescheduleResponse, error)
	Complete(context.Context, *CompleteRequest) (*CompleteResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*GetAppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
}

// UnimplementedBookingServiceServer can be embedded to stay forward compatible.
type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) AvailableSlots(context.Context, *AvailableSlotsRequest) (*AvailableSlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AvailableSlots not implemented")
}
func (UnimplementedBookingServiceServer) EffectiveHours(context.Context, *EffectiveHoursRequest) (*EffectiveHoursResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EffectiveHours not implemented")
}
func (UnimplementedBookingServiceServer) Book(context.Context, *BookRequest) (*BookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Book not implemented")
}
func (UnimplementedBookingServiceServer) Block(context.Context, *BlockRequest) (*BlockResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Block not implemented")
}
func (UnimplementedBookingServiceServer) Unblock(context.Context, *UnblockRequest) (*UnblockResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Unblock not implemented")
}
func (UnimplementedBookingServiceServer) Cancel(context.Context, *CancelRequest) (*CancelResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Cancel not implemented")
}
func (UnimplementedBookingServiceServer) Reschedule(context.Context, *RescheduleRequest) (*RescheduleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Reschedule not implemented")
}
func (UnimplementedBookingServiceServer) Complete(context.Context, *CompleteRequest) (*CompleteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Complete not implemented")
}
func (UnimplementedBookingServiceServer) GetAppointment(context.Context, *GetAppointmentRequest) (*GetAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAppointment not implemented")
}
func (UnimplementedBookingServiceServer) ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAppointments not implemented")
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AvailableSlots", Handler: unaryHandler(BookingService_AvailableSlots_FullMethodName, BookingServiceServer.AvailableSlots)},
		{MethodName: "EffectiveHours", Handler: unaryHandler(BookingService_EffectiveHours_FullMethodName, BookingServiceServer.EffectiveHours)},
		{MethodName: "Book", Handler: unaryHandler(BookingService_Book_FullMethodName, BookingServiceServer.Book)},
		{MethodName: "Block", Handler: unaryHandler(BookingService_Block_FullMethodName, BookingServiceServer.Block)},
		{MethodName: "Unblock", Handler: unaryHandler(BookingService_Unblock_FullMethodName, BookingServiceServer.Unblock)},
		{MethodName: "Cancel", Handler: unaryHandler(BookingService_Cancel_FullMethodName, BookingServiceServer.Cancel)},
		{MethodName: "Reschedule", Handler: unaryHandler(BookingService_Reschedule_FullMethodName, BookingServiceServer.Reschedule)},
		{MethodName: "Complete", Handler: unaryHandler(BookingService_Complete_FullMethodName, BookingServiceServer.Complete)},
		{MethodName: "GetAppointment", Handler: unaryHandler(BookingService_GetAppointment_FullMethodName, BookingServiceServer.GetAppointment)},
		{MethodName: "ListAppointments", Handler: unaryHandler(BookingService_ListAppointments_FullMethodName, BookingServiceServer.ListAppointments)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salon/scheduling/v1/booking",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

type BookingServiceClient interface {
	AvailableSlots(ctx context.Context, in *AvailableSlotsRequest, opts ...grpc.CallOption) (*AvailableSlotsResponse, error)
	EffectiveHours(ctx context.Context, in *EffectiveHoursRequest, opts ...grpc.CallOption) (*EffectiveHoursResponse, error)
	Book(ctx context.Context, in *BookRequest, opts ...grpc.CallOption) (*BookResponse, error)
	Block(ctx context.Context, in *BlockRequest, opts ...grpc.CallOption) (*BlockResponse, error)
	Unblock(ctx context.Context, in *UnblockRequest, opts ...grpc.CallOption) (*UnblockResponse, error)
	Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*CancelResponse, error)
	Reschedule(ctx context.Context, in *RescheduleRequest, opts ...grpc.CallOption) (*RescheduleResponse, error)
	Complete(ctx context.Context, in *CompleteRequest, opts ...grpc.CallOption) (*CompleteResponse, error)
	GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*GetAppointmentResponse, error)
	ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error)
}

type bookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) BookingServiceClient {
	return &bookingServiceClient{cc: cc}
}

func (c *bookingServiceClient) AvailableSlots(ctx context.Context, in *AvailableSlotsRequest, opts ...grpc.CallOption) (*AvailableSlotsResponse, error) {
	return invoke[AvailableSlotsResponse](ctx, c.cc, BookingService_AvailableSlots_FullMethodName, in, opts)
}

func (c *bookingServiceClient) EffectiveHours(ctx context.Context, in *EffectiveHoursRequest, opts ...grpc.CallOption) (*EffectiveHoursResponse, error) {
	return invoke[EffectiveHoursResponse](ctx, c.cc, BookingService_EffectiveHours_FullMethodName, in, opts)
}

func (c *bookingServiceClient) Book(ctx context.Context, in *BookRequest, opts ...grpc.CallOption) (*BookResponse, error) {
	return invoke[BookResponse](ctx, c.cc, BookingService_Book_FullMethodName, in, opts)
}

func (c *bookingServiceClient) Block(ctx context.Context, in *BlockRequest, opts ...grpc.CallOption) (*BlockResponse, error) {
	return invoke[BlockResponse](ctx, c.cc, BookingService_Block_FullMethodName, in, opts)
}

func (c *bookingServiceClient) Unblock(ctx context.Context, in *UnblockRequest, opts ...grpc.CallOption) (*UnblockResponse, error) {
	return invoke[UnblockResponse](ctx, c.cc, BookingService_Unblock_FullMethodName, in, opts)
}

func (c *bookingServiceClient) Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*CancelResponse, error) {
	return invoke[CancelResponse](ctx, c.cc, BookingService_Cancel_FullMethodName, in, opts)
}

func (c *bookingServiceClient) Reschedule(ctx context.Context, in *RescheduleRequest, opts ...grpc.CallOption) (*RescheduleResponse, error) {
	return invoke[RescheduleResponse](ctx, c.cc, BookingService_Reschedule_FullMethodName, in, opts)
}

func (c *bookingServiceClient) Complete(ctx context.Context, in *CompleteRequest, opts ...grpc.CallOption) (*CompleteResponse, error) {
	return invoke[CompleteResponse](ctx, c.cc, BookingService_Complete_FullMethodName, in, opts)
}

func (c *bookingServiceClient) GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*GetAppointmentResponse, error) {
	return invoke[GetAppointmentResponse](ctx, c.cc, BookingService_GetAppointment_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, BookingService_ListAppointments_FullMethodName, in, opts)
}
