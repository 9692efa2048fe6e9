// Package audit wraps the cache's append-only event log. Append stores
// whatever payload map the caller passes; no payload-key vocabulary is
// enforced here.
package audit

import (
	"context"

	"resolverd/internal/cache"
	"resolverd/internal/shared"
)

// Log appends structured audit events, swallowing and logging storage
// errors rather than propagating them: an audit-write failure must never
// abort a directory that otherwise resolved successfully.
type Log struct {
	store  *cache.Store
	logger shared.Logger
}

// NewLog returns a Log backed by store. logger may be nil, in which case
// append failures are silently dropped.
func NewLog(store *cache.Store, logger shared.Logger) *Log {
	return &Log{store: store, logger: logger}
}

// Append records event with payload, logging (not returning) any storage
// failure.
func (l *Log) Append(ctx context.Context, event string, payload map[string]any) {
	if l == nil || l.store == nil {
		return
	}
	if err := l.store.AppendAuditEvent(ctx, event, payload); err != nil && l.logger != nil {
		l.logger.Warning("audit: failed to record %s: %v", event, err)
	}
}
