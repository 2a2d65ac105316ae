package conf

import (
	"time"

	middleware "civicdesk/internal/middleware/grpc"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// NewUnaryInterceptors creates and returns a slice of gRPC UnaryServerInterceptor.
func NewUnaryInterceptors(logger *zap.Logger) []grpc.UnaryServerInterceptor {
	// Per-method timeout overrides, keyed by full method name.
	timeoutOverrides := map[string]time.Duration{}

	return []grpc.UnaryServerInterceptor{
		middleware.NewUnaryPanicInterceptor(logger),
		middleware.NewUnaryTimeoutInterceptor(timeoutOverrides),
	}
}
