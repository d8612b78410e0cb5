package schedulingv1

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(Name)
	if c == nil {
		t.Fatalf("codec %q not registered", Name)
	}

	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	b, err := c.Marshal(&BookRequest{StylistID: "s1", Start: start})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(b), `"start":"2026-01-05T09:00:00Z"`) {
		t.Fatalf("payload = %s, want RFC 3339 start", b)
	}
}

func TestServiceDescsAreComplete(t *testing.T) {
	tests := []struct {
		desc *grpc.ServiceDesc
		want int
	}{
		{&BookingService_ServiceDesc, 10},
		{&CatalogService_ServiceDesc, 9},
	}
	for _, tt := range tests {
		t.Run(tt.desc.ServiceName, func(t *testing.T) {
			if len(tt.desc.Methods) != tt.want {
				t.Fatalf("methods = %d, want %d", len(tt.desc.Methods), tt.want)
			}
			seen := map[string]bool{}
			for _, m := range tt.desc.Methods {
				if m.Handler == nil {
					t.Fatalf("%s has no handler", m.MethodName)
				}
				if seen[m.MethodName] {
					t.Fatalf("%s registered twice", m.MethodName)
				}
				seen[m.MethodName] = true
			}
		})
	}
}

type bookOnly struct {
	UnimplementedBookingServiceServer
	got *BookRequest
}

func (b *bookOnly) Book(ctx context.Context, in *BookRequest) (*BookResponse, error) {
	b.got = in
	return &BookResponse{Appointment: Appointment{ID: "a1"}}, nil
}

func TestUnaryHandler_DecodesAndRunsInterceptor(t *testing.T) {
	srv := &bookOnly{}
	var sawMethod string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		sawMethod = info.FullMethod
		return handler(ctx, req)
	}
	dec := func(v any) error {
		return encoding.GetCodec(Name).Unmarshal([]byte(`{"stylist_id":"s1","client_id":"c1"}`), v)
	}

	h := unaryHandler(BookingService_Book_FullMethodName, BookingServiceServer.Book)
	out, err := h(srv, context.Background(), dec, interceptor)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if sawMethod != BookingService_Book_FullMethodName {
		t.Fatalf("FullMethod = %q, want %q", sawMethod, BookingService_Book_FullMethodName)
	}
	if srv.got == nil || srv.got.StylistID != "s1" || srv.got.ClientID != "c1" {
		t.Fatalf("decoded request = %+v", srv.got)
	}
	if resp := out.(*BookResponse); resp.Appointment.ID != "a1" {
		t.Fatalf("response = %+v", resp)
	}

	_, err = h(srv, context.Background(), func(any) error { return errors.New("bad frame") }, nil)
	if err == nil {
		t.Fatalf("expected decode error")
	}
}
