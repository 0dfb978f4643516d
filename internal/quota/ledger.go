// Package quota gates generation requests on the caller's plan tier and
// free-usage counter.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkgen/inkgen/internal/model"
)

// ErrQuotaExceeded is returned when a free-tier user has consumed their
// allowance.
var ErrQuotaExceeded = errors.New("free usage limit reached")

// LimitMessage is the user-facing quota denial message.
const LimitMessage = "Limit reached, upgrade to continue."

// UsageWriter persists the free-usage counter back to the identity provider.
type UsageWriter interface {
	SetFreeUsage(ctx context.Context, userID string, usage int) error
}

// Ledger decides whether a gated operation may run and records consumption
// after it succeeds.
//
// Check reads the counter snapshot carried by the request identity; it is
// not atomic with Consume or with concurrent requests. A user with several
// requests in flight can pass Check on the same stale counter and exceed
// the nominal limit by the number of in-flight requests. That race is
// accepted: the counter only ever grows, and Consume runs only after the
// gated operation succeeded, so failed generations are never charged.
type Ledger struct {
	usage  UsageWriter
	limit  int
	logger *slog.Logger
}

// NewLedger creates a Ledger with the standard free-tier limit.
func NewLedger(usage UsageWriter, logger *slog.Logger) *Ledger {
	return &Ledger{
		usage:  usage,
		limit:  model.FreeUsageLimit,
		logger: logger,
	}
}

// Check reports whether the identity may run one more gated operation.
// Premium users are always allowed and never counted.
func (l *Ledger) Check(id model.Identity) error {
	if id.IsPremium() {
		return nil
	}
	if id.FreeUsage >= l.limit {
		return ErrQuotaExceeded
	}
	return nil
}

// Consume records one successful gated operation for a free-tier user by
// writing the incremented counter to the identity provider. Premium users
// are never mutated.
func (l *Ledger) Consume(ctx context.Context, id model.Identity) error {
	if id.IsPremium() {
		return nil
	}

	if err := l.usage.SetFreeUsage(ctx, id.UserID, id.FreeUsage+1); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	l.logger.Debug("free usage consumed",
		slog.String("user_id", id.UserID),
		slog.Int("free_usage", id.FreeUsage+1),
	)

	return nil
}
