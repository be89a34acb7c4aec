package httpadapter

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	corsAllowMethods = "GET,POST,OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// allowedOrigin returns the Access-Control-Allow-Origin value for origin.
// With no patterns every origin is allowed; otherwise the origin host must
// match one of the patterns, the same host globs the websocket listener uses.
func allowedOrigin(origin string, patterns []string) (string, bool) {
	if len(patterns) == 0 {
		return "*", true
	}
	if origin == "" {
		return "", false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Host)
	for _, p := range patterns {
		if ok, err := path.Match(strings.ToLower(p), host); err == nil && ok {
			return origin, true
		}
	}
	return "", false
}

func applyCORSHeaders(ctx *app.RequestContext, patterns []string) {
	allow, ok := allowedOrigin(string(ctx.Request.Header.Peek("Origin")), patterns)
	if len(patterns) > 0 {
		ctx.Response.Header.Set("Vary", "Origin")
	}
	if !ok {
		return
	}
	ctx.Response.Header.Set("Access-Control-Allow-Origin", allow)
	ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Max-Age", "600")
}

func corsMiddleware(patterns []string) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		applyCORSHeaders(ctx, patterns)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}
