package http

import (
	"context"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

type ctxKey string

const (
	ctxKeyDeviceID  ctxKey = "deviceID"
	ctxKeyNamespace ctxKey = "namespace"
	ctxKeyRoute     ctxKey = "route"
	ctxKeyToken     ctxKey = "token"
	ctxKeyUser      ctxKey = "user"
	ctxKeyVersion   ctxKey = "version"
)

func deviceIDFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyDeviceID).(string)
}

func deviceIDInContext(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, ctxKeyDeviceID, deviceID)
}

func namespaceFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyNamespace).(string)
}

func namespaceInContext(ctx context.Context, ns string) context.Context {
	return context.WithValue(ctx, ctxKeyNamespace, ns)
}

func originFromContext(ctx context.Context) core.Origin {
	var (
		currentUser = userFromContext(ctx)
		deviceID    = deviceIDFromContext(ctx)
	)

	return createOrigin(deviceID, currentUser.ID)
}

func routeFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyRoute).(string)
}

func routeInContext(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

func tokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyToken, token)
}

func userFromContext(ctx context.Context) *user.User {
	return ctx.Value(ctxKeyUser).(*user.User)
}

func userInContext(ctx context.Context, user *user.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func versionFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyVersion).(string)
}

func versionInContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, ctxKeyVersion, version)
}
