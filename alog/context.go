package alog

import (
	"context"
	"log/slog"
)

type ctxAttrKey struct{}

// AddAttr returns a copy of ctx carrying attr.
// Every record logged with the returned context gets attr added,
// on top of the attributes already present in ctx.
func AddAttr(ctx context.Context, attr slog.Attr) context.Context {
	existing, _ := FromContext(ctx)

	attrs := make([]slog.Attr, 0, len(existing)+1)
	attrs = append(attrs, existing...)
	attrs = append(attrs, attr)

	return context.WithValue(ctx, ctxAttrKey{}, attrs)
}

// FromContext returns the attributes added via AddAttr.
func FromContext(ctx context.Context) ([]slog.Attr, bool) {
	if ctx == nil {
		return nil, false
	}

	attrs, ok := ctx.Value(ctxAttrKey{}).([]slog.Attr)

	return attrs, ok && len(attrs) > 0
}
