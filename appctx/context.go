package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> frappe).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyCorrelationId = ContextKey("CorrelationId")
	ContextKeyRealmId       = ContextKey("RealmId")
	ContextKeyTriggeredBy   = ContextKey("TriggeredBy")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func GetCorrelationId(ctx context.Context) (string, bool) {
	return GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationId(ctx context.Context, cid string) context.Context {
	return Set(ctx, ContextKeyCorrelationId, cid)
}

func GetRealmId(ctx context.Context) (string, bool) {
	return GetString(ctx, ContextKeyRealmId)
}

func SetRealmId(ctx context.Context, realmId string) context.Context {
	return Set(ctx, ContextKeyRealmId, realmId)
}
