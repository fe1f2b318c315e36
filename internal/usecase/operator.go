package usecase

import (
	"context"

	"autos-admin/internal/domain"
)

type operatorKey struct{}

// WithOperator stores the authenticated operator identity on ctx.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

// OperatorFrom returns the operator identity carried by ctx.
func OperatorFrom(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operatorKey{}).(string)
	return op, ok && op != ""
}

func requireOperator(ctx context.Context) (string, error) {
	op, ok := OperatorFrom(ctx)
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return op, nil
}
