package helper

import (
	"context"

	"civicdesk/internal/models"
)

type contextKey string

const operatorKey contextKey = "operator"

// WithOperator stores the authenticated operator on ctx.
func WithOperator(ctx context.Context, operator *models.User) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

// OperatorFromContext returns the authenticated operator, if any.
func OperatorFromContext(ctx context.Context) (*models.User, bool) {
	operator, ok := ctx.Value(operatorKey).(*models.User)
	return operator, ok && operator != nil
}
