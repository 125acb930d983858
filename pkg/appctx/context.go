// Package appctx carries request scoped values through context.Context.
package appctx

import "context"

type contextKey string

const (
	requestIDKey contextKey = "X-Request-Id"
	methodKey    contextKey = "X-Method"
	routeKey     contextKey = "X-Route"
	remoteIPKey  contextKey = "X-Remote-Ip"
	refererKey   contextKey = "X-Referer"
)

func set(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func get(ctx context.Context, key contextKey) string {
	value, _ := ctx.Value(key).(string)
	return value
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return set(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	return get(ctx, requestIDKey)
}

func SetMethod(ctx context.Context, method string) context.Context {
	return set(ctx, methodKey, method)
}

func GetMethod(ctx context.Context) string {
	return get(ctx, methodKey)
}

func SetRoute(ctx context.Context, route string) context.Context {
	return set(ctx, routeKey, route)
}

func GetRoute(ctx context.Context) string {
	return get(ctx, routeKey)
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return set(ctx, remoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	return get(ctx, remoteIPKey)
}

func SetReferer(ctx context.Context, referer string) context.Context {
	return set(ctx, refererKey, referer)
}

func GetReferer(ctx context.Context) string {
	return get(ctx, refererKey)
}

// Fields returns the populated values in a shape suitable for structured logs.
func Fields(ctx context.Context) map[string]any {
	fields := map[string]any{}
	for name, key := range map[string]contextKey{
		"request_id": requestIDKey,
		"method":     methodKey,
		"route":      routeKey,
		"remote_ip":  remoteIPKey,
	} {
		if value := get(ctx, key); value != "" {
			fields[name] = value
		}
	}
	return fields
}
