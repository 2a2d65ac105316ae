package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultRequestTimeout = 5 * time.Second

// NewUnaryTimeoutInterceptor creates a gRPC unary server interceptor that sets a timeout on the context.
// It uses the DefaultRequestTimeout unless a specific timeout for the method is provided in the overrides map.
func NewUnaryTimeoutInterceptor(overrides map[string]time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		timeout := DefaultRequestTimeout
		if t, ok := overrides[info.FullMethod]; ok {
			timeout = t
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}

// NewUnaryPanicInterceptor creates a gRPC unary server interceptor that recovers from panics.
func NewUnaryPanicInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	log := logger.Named("GrpcPanic")
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = status.Error(codes.Internal, "Internal server error")
			}
		}()
		return handler(ctx, req)
	}
}
