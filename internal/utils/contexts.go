package utils

import (
	"context"
	"errors"
)

type contextKey string

var ErrConnectionIDNotFound = errors.New("connection id not found in context")

const connectionIDKey contextKey = "connection_id"

func ContextWithConnectionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connectionIDKey, id)
}

func ConnectionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(connectionIDKey).(string)
	return id, ok
}

func MustConnectionIDFromContext(ctx context.Context) (string, error) {
	id, ok := ConnectionIDFromContext(ctx)
	if !ok {
		return "", ErrConnectionIDNotFound
	}
	return id, nil
}
