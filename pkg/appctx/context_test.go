package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = SetRequestID(ctx, "req-1")
	ctx = SetMethod(ctx, "POST")
	ctx = SetRoute(ctx, "/search")
	ctx = SetRemoteIP(ctx, "10.0.0.1")
	ctx = SetReferer(ctx, "http://ui.local/")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "POST", GetMethod(ctx))
	assert.Equal(t, "/search", GetRoute(ctx))
	assert.Equal(t, "10.0.0.1", GetRemoteIP(ctx))
	assert.Equal(t, "http://ui.local/", GetReferer(ctx))

	assert.Equal(t, map[string]any{
		"request_id": "req-1",
		"method":     "POST",
		"route":      "/search",
		"remote_ip":  "10.0.0.1",
	}, Fields(ctx))
}
