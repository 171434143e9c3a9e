// Package trace tags a unit of work with an operation ID carried in its
// context, so every log record it produces can be correlated.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// OperationIDKey is the context key for the operation ID
	OperationIDKey ContextKey = "operation_id"
)

// NewOperationID creates a unique operation ID
func NewOperationID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("op_%d", time.Now().UnixNano())
	}
	return "op_" + hex.EncodeToString(bytes)
}

// WithOperationID returns a copy of ctx carrying id
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, OperationIDKey, id)
}

// Ensure returns ctx unchanged if it already carries an operation ID,
// otherwise a child context with a fresh one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := OperationID(ctx); id != "" {
		return ctx, id
	}
	id := NewOperationID()
	return WithOperationID(ctx, id), id
}

// OperationID extracts the operation ID from ctx, or "" when there is none
func OperationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(OperationIDKey).(string); ok {
		return id
	}
	return ""
}
