package authflow

import "context"

type contextKey string

const (
	ctxKeyUserAgent contextKey = "authflow:user_agent"
	ctxKeyLocale    contextKey = "authflow:locale"
)

// WithUserAgent describes the withuseragent operation and its observable behavior.
//
// WithUserAgent may return an error when input validation, dependency calls, or security checks fail.
// WithUserAgent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, userAgent)
}

// WithLocale describes the withlocale operation and its observable behavior.
//
// WithLocale may return an error when input validation, dependency calls, or security checks fail.
// WithLocale does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, locale)
}

func userAgentFromContext(ctx context.Context) string {
	value, _ := ctx.Value(ctxKeyUserAgent).(string)
	return value
}

func localeFromContext(ctx context.Context) string {
	value, _ := ctx.Value(ctxKeyLocale).(string)
	return value
}
