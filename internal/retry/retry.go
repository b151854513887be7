// Package retry wraps collaborator calls (file reads of externally produced
// distance and path tables) in exponential backoff. Configuration errors are
// returned at once; everything else is retried up to the policy's limit.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Policy bounds the retries of one call.
type Policy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy returns the policy used when the configuration sets none.
func DefaultPolicy() Policy {
	return Policy{MaxTries: 5, InitialInterval: time.Second, MaxInterval: 30 * time.Second}
}

// FromConfig builds a policy from the retry settings of cfg, falling back to
// the defaults for unset values.
func FromConfig(cfg types.Config) Policy {
	p := DefaultPolicy()
	if cfg.RetryMaxTries > 0 {
		p.MaxTries = cfg.RetryMaxTries
	}
	if cfg.RetryInitialInterval > 0 {
		p.InitialInterval = cfg.RetryInitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	return p
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent or configuration error,
// the policy gives up, or ctx is done. Every failed attempt is logged.
func Do[T any](ctx context.Context, p Policy, log *logger.Logger, name string, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval

	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		v, err := op()
		if err != nil && types.IsConfigError(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("collaborator call failed, retrying",
			"call", name, "attempt", attempt, "wait", wait, "error", err)
	}
	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxTries),
		backoff.WithNotify(notify),
	)
}
