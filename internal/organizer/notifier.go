package organizer

import (
	"context"

	"resolverd/internal/api/navidrome"
	"resolverd/internal/shared"
)

// NavidromeNotifier is the resolver.Notifier implementation that asks a
// configured Navidrome/Subsonic server to rescan after files move,
// per SPEC_FULL.md's domain-stack wiring of the teacher's navidrome
// client. Authenticate must succeed once before NotifyLibraryScan is
// called; failures there are logged, never propagated, since a rescan
// trigger must never fail an otherwise-successful apply.
type NavidromeNotifier struct {
	client *navidrome.NavidromeClient
	logger shared.Logger
}

// NewNavidromeNotifier authenticates against url with the given
// credentials and returns a ready Notifier, or an error if the server is
// unreachable at startup (callers may choose to fall back to NoopNotifier
// instead of failing the whole daemon).
func NewNavidromeNotifier(url, username, password string, logger shared.Logger) (*NavidromeNotifier, error) {
	client := navidrome.NewNavidromeClient(url, username, password)
	if err := client.Authenticate(); err != nil {
		return nil, err
	}
	return &NavidromeNotifier{client: client, logger: logger}, nil
}

// NotifyLibraryScan triggers a Navidrome library rescan, swallowing
// (logging, not returning) any failure.
func (n *NavidromeNotifier) NotifyLibraryScan(ctx context.Context) error {
	if err := n.client.TriggerScan(ctx); err != nil {
		if n.logger != nil {
			n.logger.Warning("navidrome: library scan trigger failed: %v", err)
		}
	}
	return nil
}

// NoopNotifier is the default resolver.Notifier when no media server is
// configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLibraryScan(ctx context.Context) error { return nil }
