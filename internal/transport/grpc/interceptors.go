package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	schedulingv1 "github.com/masterries/AppointmentManager/internal/api/schedulingv1"
	"github.com/masterries/AppointmentManager/internal/domain"
	"github.com/masterries/AppointmentManager/internal/identity"
	"github.com/masterries/AppointmentManager/internal/ratelimit"
)

const RequestIDMetadataKey = "x-request-id"

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyActor
)

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

// ActorFromContext returns the caller resolved by AuthInterceptor. The zero
// Actor means the call was anonymous.
func ActorFromContext(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(ctxKeyActor).(domain.Actor)
	return a
}

func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// RequestIDInterceptor reuses the caller's x-request-id or mints one, and
// echoes it in the response headers.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := firstMetadata(ctx, RequestIDMetadataKey)
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadataKey, id))
		return handler(context.WithValue(ctx, ctxKeyRequestID, id), req)
	}
}

// TimeoutInterceptor applies timeout to calls that arrive without a deadline.
func TimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

// Anonymous callers may browse availability; everything else needs a token.
var publicMethods = map[string]bool{
	schedulingv1.BookingService_AvailableSlots_FullMethodName: true,
	schedulingv1.BookingService_EffectiveHours_FullMethodName: true,
}

// AuthInterceptor resolves the "authorization: Bearer <token>" metadata into
// an actor stored on the context.
func AuthInterceptor(p identity.Provider, log *slog.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "grpc.auth"))

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		token := bearerToken(ctx)
		if token == "" {
			if publicMethods[info.FullMethod] {
				return handler(ctx, req)
			}
			log.Info("unauthenticated call", slog.String("rpc", info.FullMethod), slog.String("reason", "missing_token"))
			return nil, status.Error(codes.Unauthenticated, "authorization bearer token is required")
		}

		actor, err := p.Identify(ctx, token)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				log.Info("unauthenticated call", slog.String("rpc", info.FullMethod), slog.Any("err", err))
				return nil, status.Error(codes.Unauthenticated, "invalid token")
			}
			log.Error("identity provider failed", slog.String("rpc", info.FullMethod), slog.Any("err", err))
			return nil, status.Error(codes.Unavailable, "identity provider unavailable")
		}
		return handler(WithActor(ctx, actor), req)
	}
}

var mutatingMethods = map[string]bool{
	schedulingv1.BookingService_Book_FullMethodName:                    true,
	schedulingv1.BookingService_Block_FullMethodName:                   true,
	schedulingv1.BookingService_Unblock_FullMethodName:                 true,
	schedulingv1.BookingService_Cancel_FullMethodName:                  true,
	schedulingv1.BookingService_Reschedule_FullMethodName:              true,
	schedulingv1.BookingService_Complete_FullMethodName:                true,
	schedulingv1.CatalogService_UpsertStylist_FullMethodName:           true,
	schedulingv1.CatalogService_UpsertService_FullMethodName:           true,
	schedulingv1.CatalogService_SetWorkingHours_FullMethodName:         true,
	schedulingv1.CatalogService_SetBusinessHours_FullMethodName:        true,
	schedulingv1.CatalogService_AddCalendarException_FullMethodName:    true,
	schedulingv1.CatalogService_RemoveCalendarException_FullMethodName: true,
	schedulingv1.CatalogService_AddClientNote_FullMethodName:           true,
}

// RateLimitInterceptor bounds mutating calls per actor, or per peer address
// for anonymous callers. A limiter failure lets the call through.
func RateLimitInterceptor(l ratelimit.Limiter, log *slog.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "grpc.ratelimit"))

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !mutatingMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		key := rateKey(ctx)
		ok, err := l.Allow(ctx, key)
		if err != nil {
			log.Warn("rate limiter unavailable", slog.Any("err", err), slog.String("rpc", info.FullMethod))
			return handler(ctx, req)
		}
		if !ok {
			log.Info("rate limited", slog.String("key", key), slog.String("rpc", info.FullMethod))
			return nil, status.Error(codes.ResourceExhausted, "too many requests, slow down")
		}
		return handler(ctx, req)
	}
}

func rateKey(ctx context.Context) string {
	if a := ActorFromContext(ctx); a.UserID != "" {
		return "user:" + a.UserID
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "peer:" + p.Addr.String()
	}
	return "anonymous"
}

func bearerToken(ctx context.Context) string {
	v := firstMetadata(ctx, "authorization")
	scheme, token, ok := strings.Cut(v, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

func idempotencyKey(ctx context.Context) string {
	if key := firstMetadata(ctx, "idempotency-key"); key != "" {
		return key
	}
	return firstMetadata(ctx, "x-idempotency-key")
}
