package httpadapter

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestCORSMiddleware_Preflight(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.SetMethod(consts.MethodOptions)
	corsMiddleware()(context.Background(), ctx)

	if got := ctx.Response.StatusCode(); got != consts.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", got, consts.StatusNoContent)
	}
	if !ctx.IsAborted() {
		t.Fatal("preflight should stop the chain")
	}
	if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")); got != corsAllowHeaders {
		t.Fatalf("allow-headers = %q", got)
	}
}

func TestCORSMiddleware_PassesThrough(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.SetMethod(consts.MethodPost)
	corsMiddleware()(context.Background(), ctx)

	if ctx.IsAborted() {
		t.Fatal("post should continue down the chain")
	}
	if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")); got != corsAllowMethods {
		t.Fatalf("allow-methods = %q", got)
	}
}
