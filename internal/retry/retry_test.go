package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

var errTransient = errors.New("file locked by another process")

func fastPolicy(tries uint) Policy {
	return Policy{MaxTries: tries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	calls := 0
	got, err := Do(context.Background(), fastPolicy(5), logger.FromCore(core), "read distances", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, logs.Len())
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(3), logger.Nop(), "read", func() (string, error) {
		calls++
		return "", errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDoDoesNotRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"configuration error", fmt.Errorf("cores.csv: %w", types.ErrMissingInput), types.ErrMissingInput},
		{"permanent", Permanent(errTransient), errTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), fastPolicy(5), logger.Nop(), "read", func() (int, error) {
				calls++
				return 0, tt.err
			})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Do(ctx, Policy{MaxTries: 10, InitialInterval: time.Hour, MaxInterval: time.Hour}, logger.Nop(), "read", func() (int, error) {
		return 0, errTransient
	})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.RetryMaxTries = 2
	cfg.RetryInitialInterval = time.Minute

	p := FromConfig(cfg)
	assert.Equal(t, uint(2), p.MaxTries)
	assert.Equal(t, time.Minute, p.InitialInterval)
	assert.Equal(t, time.Minute, p.MaxInterval, "max interval never below the initial one")

	assert.Equal(t, DefaultPolicy(), FromConfig(types.Config{}))
}
