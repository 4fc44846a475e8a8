package source

import (
	"context"

	"github.com/lhjing/workdash/internal/core/model"
)

// Source is one upstream system contributing a slice of the snapshot.
type Source interface {
	// Key identifies the source's slot in the snapshot.
	Key() string
	// Enabled reports whether the source participates in a refresh cycle.
	Enabled() bool
	// Fetch retrieves and normalizes this source's data. It returns an
	// *AuthError for an expired session, a *NetError for upstream
	// failures, and never partially-populated payloads on error.
	Fetch(ctx context.Context) (model.Payload, error)
}
