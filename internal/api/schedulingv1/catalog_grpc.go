package schedulingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const CatalogServiceName = "salon.scheduling.v1.CatalogService"

const (
	CatalogService_UpsertStylist_FullMethodName           = "/" + CatalogServiceName + "/UpsertStylist"
	CatalogService_UpsertService_FullMethodName           = "/" + CatalogServiceName + "/UpsertService"
	CatalogService_SetWorkingHours_FullMethodName         = "/" + CatalogServiceName + "/SetWorkingHours"
	CatalogService_SetBusinessHours_FullMethodName        = "/" + CatalogServiceName + "/SetBusinessHours"
	CatalogService_AddCalendarException_FullMethodName    = "/" + CatalogServiceName + "/AddCalendarException"
	CatalogService_RemoveCalendarException_FullMethodName = "/" + CatalogServiceName + "/RemoveCalendarException"
	CatalogService_ListAuditLog_FullMethodName            = "/" + CatalogServiceName + "/ListAuditLog"
	CatalogService_AddClientNote_FullMethodName           = "/" + CatalogServiceName + "/AddClientNote"
	CatalogService_ListClientNotes_FullMethodName         = "/" + CatalogServiceName + "/ListClientNotes"
)

// CatalogServiceServer manages stylists, services, and the calendar rules
// availability is computed from.
type CatalogServiceServer interface {
	UpsertStylist(context.Context, *UpsertStylistRequest) (*UpsertStylistResponse, error)
	UpsertService(context.Context, *UpsertServiceRequest) (*UpsertServiceResponse, error)
	SetWorkingHours(context.Context, *SetWorkingHoursRequest) (*SetWorkingHoursResponse, error)
	SetBusinessHours(context.Context, *SetBusinessHoursRequest) (*SetBusinessHoursResponse, error)
	AddCalendarException(context.Context, *AddCalendarExceptionRequest) (*AddCalendarExceptionResponse, error)
	RemoveCalendarException(context.Context, *RemoveCalendarExceptionRequest) (*RemoveCalendarExceptionResponse, error)
	ListAuditLog(context.Context, *ListAuditLogRequest) (*ListAuditLogResponse, error)
	AddClientNote(context.Context, *AddClientNoteRequest) (*AddClientNoteResponse, error)
	ListClientNotes(context.Context, *ListClientNotesRequest) (*ListClientNotesResponse, error)
}

type UnimplementedCatalogServiceServer struct{}

func (UnimplementedCatalogServiceServer) UpsertStylist(context.Context, *UpsertStylistRequest) (*UpsertStylistResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertStylist not implemented")
}
func (UnimplementedCatalogServiceServer) UpsertService(context.Context, *UpsertServiceRequest) (*UpsertServiceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertService not implemented")
}
func (UnimplementedCatalogServiceServer) SetWorkingHours(context.Context, *SetWorkingHoursRequest) (*SetWorkingHoursResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetWorkingHours not implemented")
}
func (UnimplementedCatalogServiceServer) SetBusinessHours(context.Context, *SetBusinessHoursRequest) (*SetBusinessHoursResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetBusinessHours not implemented")
}
func (UnimplementedCatalogServiceServer) AddCalendarException(context.Context, *AddCalendarExceptionRequest) (*AddCalendarExceptionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddCalendarException not implemented")
}
func (UnimplementedCatalogServiceServer) RemoveCalendarException(context.Context, *RemoveCalendarExceptionRequest) (*RemoveCalendarExceptionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveCalendarException not implemented")
}
func (UnimplementedCatalogServiceServer) ListAuditLog(context.Context, *ListAuditLogRequest) (*ListAuditLogResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditLog not implemented")
}
func (UnimplementedCatalogServiceServer) AddClientNote(context.Context, *AddClientNoteRequest) (*AddClientNoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddClientNote not implemented")
}
func (UnimplementedCatalogServiceServer) ListClientNotes(context.Context, *ListClientNotesRequest) (*ListClientNotesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListClientNotes not implemented")
}

var CatalogService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "UpsertStylist", Handler: unaryHandler(CatalogService_UpsertStylist_FullMethodName, CatalogServiceServer.UpsertStylist)},
		{MethodName: "UpsertService", Handler: unaryHandler(CatalogService_UpsertService_FullMethodName, CatalogServiceServer.UpsertService)},
		{MethodName: "SetWorkingHours", Handler: unaryHandler(CatalogService_SetWorkingHours_FullMethodName, CatalogServiceServer.SetWorkingHours)},
		{MethodName: "SetBusinessHours", Handler: unaryHandler(CatalogService_SetBusinessHours_FullMethodName, CatalogServiceServer.SetBusinessHours)},
		{MethodName: "AddCalendarException", Handler: unaryHandler(CatalogService_AddCalendarException_FullMethodName, CatalogServiceServer.AddCalendarException)},
		{MethodName: "RemoveCalendarException", Handler: unaryHandler(CatalogService_RemoveCalendarException_FullMethodName, CatalogServiceServer.RemoveCalendarException)},
		{MethodName: "ListAuditLog", Handler: unaryHandler(CatalogService_ListAuditLog_FullMethodName, CatalogServiceServer.ListAuditLog)},
		{MethodName: "AddClientNote", Handler: unaryHandler(CatalogService_AddClientNote_FullMethodName, CatalogServiceServer.AddClientNote)},
		{MethodName: "ListClientNotes", Handler: unaryHandler(CatalogService_ListClientNotes_FullMethodName, CatalogServiceServer.ListClientNotes)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salon/scheduling/v1/catalog",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogService_ServiceDesc, srv)
}

type CatalogServiceClient interface {
	UpsertStylist(ctx context.Context, in *UpsertStylistRequest, opts ...grpc.CallOption) (*UpsertStylistResponse, error)
	UpsertService(ctx context.Context, in *UpsertServiceRequest, opts ...grpc.CallOption) (*UpsertServiceResponse, error)
	SetWorkingHours(ctx context.Context, in *SetWorkingHoursRequest, opts ...grpc.CallOption) (*SetWorkingHoursResponse, error)
	SetBusinessHours(ctx context.Context, in *SetBusinessHoursRequest, opts ...grpc.CallOption) (*SetBusinessHoursResponse, error)
	AddCalendarException(ctx context.Context, in *AddCalendarExceptionRequest, opts ...grpc.CallOption) (*AddCalendarExceptionResponse, error)
	RemoveCalendarException(ctx context.Context, in *RemoveCalendarExceptionRequest, opts ...grpc.CallOption) (*RemoveCalendarExceptionResponse, error)
	ListAuditLog(ctx context.Context, in *ListAuditLogRequest, opts ...grpc.CallOption) (*ListAuditLogResponse, error)
	AddClientNote(ctx context.Context, in *AddClientNoteRequest, opts ...grpc.CallOption) (*AddClientNoteResponse, error)
	ListClientNotes(ctx context.Context, in *ListClientNotesRequest, opts ...grpc.CallOption) (*ListClientNotesResponse, error)
}

type catalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) CatalogServiceClient {
	return &catalogServiceClient{cc: cc}
}

func (c *catalogServiceClient) UpsertStylist(ctx context.Context, in *UpsertStylistRequest, opts ...grpc.CallOption) (*UpsertStylistResponse, error) {
	return invoke[UpsertStylistResponse](ctx, c.cc, CatalogService_UpsertStylist_FullMethodName, in, opts)
}

func (c *catalogServiceClient) UpsertService(ctx context.Context, in *UpsertServiceRequest, opts ...grpc.CallOption) (*UpsertServiceResponse, error) {
	return invoke[UpsertServiceResponse](ctx, c.cc, CatalogService_UpsertService_FullMethodName, in, opts)
}

func (c *catalogServiceClient) SetWorkingHours(ctx context.Context, in *SetWorkingHoursRequest, opts ...grpc.CallOption) (*SetWorkingHoursResponse, error) {
	return invoke[SetWorkingHoursResponse](ctx, c.cc, CatalogService_SetWorkingHours_FullMethodName, in, opts)
}

func (c *catalogServiceClient) SetBusinessHours(ctx context.Context, in *SetBusinessHoursRequest, opts ...grpc.CallOption) (*SetBusinessHoursResponse, error) {
	return invoke[SetBusinessHoursResponse](ctx, c.cc, CatalogService_SetBusinessHours_FullMethodName, in, opts)
}

func (c *catalogServiceClient) AddCalendarException(ctx context.Context, in *AddCalendarExceptionRequest, opts ...grpc.CallOption) (*AddCalendarExceptionResponse, error) {
	return invoke[AddCalendarExceptionResponse](ctx, c.cc, CatalogService_AddCalendarException_FullMethodName, in, opts)
}

func (c *catalogServiceClient) RemoveCalendarException(ctx context.Context, in *RemoveCalendarExceptionRequest, opts ...grpc.CallOption) (*RemoveCalendarExceptionResponse, error) {
	return invoke[RemoveCalendarExceptionResponse](ctx, c.cc, CatalogService_RemoveCalendarException_FullMethodName, in, opts)
}

func (c *catalogServiceClient) ListAuditLog(ctx context.Context, in *ListAuditLogRequest, opts ...grpc.CallOption) (*ListAuditLogResponse, error) {
	return invoke[ListAuditLogResponse](ctx, c.cc, CatalogService_ListAuditLog_FullMethodName, in, opts)
}

func (c *catalogServiceClient) AddClientNote(ctx context.Context, in *AddClientNoteRequest, opts ...grpc.CallOption) (*AddClientNoteResponse, error) {
	return invoke[AddClientNoteResponse](ctx, c.cc, CatalogService_AddClientNote_FullMethodName, in, opts)
}

func (c *catalogServiceClient) ListClientNotes(ctx context.Context, in *ListClientNotesRequest, opts ...grpc.CallOption) (*ListClientNotesResponse, error) {
	return invoke[ListClientNotesResponse](ctx, c.cc, CatalogService_ListClientNotes_FullMethodName, in, opts)
}
