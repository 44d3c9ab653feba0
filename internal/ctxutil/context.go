// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	clientIPKey  contextKey = "ctxutil.clientIP"
)

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithClientIP adds the caller's IP address to the context.
// The client IP keys the export rate limiter.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP retrieves the client IP from the context.
// Returns the IP if found, empty string otherwise.
func GetClientIP(ctx context.Context) string {
	if v := ctx.Value(clientIPKey); v != nil {
		if ip, ok := v.(string); ok && ip != "" {
			return ip
		}
	}
	return ""
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for work that must finish after the client disconnects, such as
// publishing an export that has already been rendered.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if ip := GetClientIP(ctx); ip != "" {
		newCtx = WithClientIP(newCtx, ip)
	}

	return newCtx
}
