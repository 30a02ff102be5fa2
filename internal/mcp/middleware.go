package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/confsched/internal/domain/activity"
)

// operatorMiddleware attributes tool calls to the proxy user when present, or
// to the client name the session initialized with.
func operatorMiddleware(fallback string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			user := headerUser(req)
			if user == "" {
				user = clientName(req)
			}
			if user == "" {
				user = fallback
			}
			return next(activity.WithUser(ctx, user), method, req)
		}
	}
}

func headerUser(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	extra := req.GetExtra()
	if extra == nil || extra.Header == nil {
		return ""
	}
	return strings.TrimSpace(extra.Header.Get(activity.OperatorHeader))
}

func clientName(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	ss, ok := req.GetSession().(*sdkmcp.ServerSession)
	if !ok || ss == nil {
		return ""
	}
	params := ss.InitializeParams()
	if params == nil || params.ClientInfo == nil {
		return ""
	}
	return params.ClientInfo.Name
}
