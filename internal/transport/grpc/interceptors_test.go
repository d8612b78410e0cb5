package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/identity"
)

type fakeLimiter struct {
	allowFn func(ctx context.Context, key string) (bool, error)
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if f.allowFn == nil {
		panic("Allow not configured")
	}
	return f.allowFn(ctx, key)
}

type failingProvider struct{}

func (failingProvider) Identify(ctx context.Context, token string) (domain.Actor, error) {
	return domain.Actor{}, errors.New("jwks endpoint down")
}

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: method}
}

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

func TestAuthInterceptor(t *testing.T) {
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	auth := AuthInterceptor(identity.StaticProvider{"good": admin}, quietLogger())

	tests := []struct {
		name      string
		ctx       context.Context
		method    string
		wantCode  codes.Code
		wantActor domain.Actor
	}{
		{"valid token", withToken("good"), schedulingv1.BookingService_Book_FullMethodName, codes.OK, admin},
		{"missing token", context.Background(), schedulingv1.BookingService_Book_FullMethodName, codes.Unauthenticated, domain.Actor{}},
		{"wrong scheme", metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic good")), schedulingv1.BookingService_Book_FullMethodName, codes.Unauthenticated, domain.Actor{}},
		{"unknown token", withToken("bad"), schedulingv1.BookingService_Book_FullMethodName, codes.Unauthenticated, domain.Actor{}},
		{"public without token", context.Background(), schedulingv1.BookingService_AvailableSlots_FullMethodName, codes.OK, domain.Actor{}},
		{"public with bad token", withToken("bad"), schedulingv1.BookingService_AvailableSlots_FullMethodName, codes.Unauthenticated, domain.Actor{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen domain.Actor
			_, err := auth(tt.ctx, nil, info(tt.method), func(ctx context.Context, req any) (any, error) {
				seen = ActorFromContext(ctx)
				return nil, nil
			})
			if status.Code(err) != tt.wantCode {
				t.Fatalf("code = %s, want %s", status.Code(err), tt.wantCode)
			}
			if seen != tt.wantActor {
				t.Fatalf("actor = %+v, want %+v", seen, tt.wantActor)
			}
		})
	}
}

func TestAuthInterceptor_ProviderFailureIsUnavailable(t *testing.T) {
	auth := AuthInterceptor(failingProvider{}, quietLogger())
	_, err := auth(withToken("x"), nil, info(schedulingv1.BookingService_Book_FullMethodName), func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run")
		return nil, nil
	})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.Unavailable)
	}
}

func TestRateLimitInterceptor(t *testing.T) {
	var keys []string
	limiter := &fakeLimiter{allowFn: func(ctx context.Context, key string) (bool, error) {
		keys = append(keys, key)
		return false, nil
	}}
	rl := RateLimitInterceptor(limiter, quietLogger())
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	ctx := WithActor(context.Background(), domain.Actor{UserID: "client-1", Role: domain.RoleClient})

	_, err := rl(ctx, nil, info(schedulingv1.BookingService_Book_FullMethodName), handler)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.ResourceExhausted)
	}
	if len(keys) != 1 || keys[0] != "user:client-1" {
		t.Fatalf("keys = %v, want [user:client-1]", keys)
	}

	// Reads are never limited.
	if _, err := rl(ctx, nil, info(schedulingv1.BookingService_ListAppointments_FullMethodName), handler); err != nil {
		t.Fatalf("read call error: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("limiter consulted for a read")
	}
}

func TestRateLimitInterceptor_FailsOpen(t *testing.T) {
	rl := RateLimitInterceptor(&fakeLimiter{allowFn: func(ctx context.Context, key string) (bool, error) {
		return false, errors.New("redis down")
	}}, quietLogger())

	out, err := rl(context.Background(), nil, info(schedulingv1.BookingService_Cancel_FullMethodName), func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if err != nil || out != "ok" {
		t.Fatalf("got %v, %v; want ok", out, err)
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	rid := RequestIDInterceptor()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "req-42"))
	var got string
	_, _ = rid(ctx, nil, info("/x/y"), func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if got != "req-42" {
		t.Fatalf("request id = %q, want %q", got, "req-42")
	}

	_, _ = rid(context.Background(), nil, info("/x/y"), func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if got == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestTimeoutInterceptor(t *testing.T) {
	ti := TimeoutInterceptor(time.Second)

	_, _ = ti(context.Background(), nil, info("/x/y"), func(ctx context.Context, req any) (any, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected a deadline")
		}
		return nil, nil
	})

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	want, _ := parent.Deadline()
	_, _ = ti(parent, nil, info("/x/y"), func(ctx context.Context, req any) (any, error) {
		if got, _ := ctx.Deadline(); !got.Equal(want) {
			t.Fatalf("deadline = %v, want caller's %v", got, want)
		}
		return nil, nil
	})
}
