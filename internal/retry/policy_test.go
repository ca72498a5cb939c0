package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	require.Equal(t, Policy{Mode: Linear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}, DefaultPolicy())
}

func TestNewPolicy_ClampsAndOverrides(t *testing.T) {
	p := NewPolicy(Fixed, 5*time.Second, 2*time.Second, 5)
	require.Equal(t, Policy{Mode: Fixed, Initial: 2 * time.Second, Max: 2 * time.Second, MaxRetries: 5}, p)

	p = NewPolicy("bogus", 0, 0, -1)
	require.Equal(t, DefaultPolicy(), p)
}

func TestDelay(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		name   string
		policy Policy
		want   []time.Duration // attempts 0..4
	}{
		{"fixed", NewPolicy(Fixed, 100*ms, 500*ms, 3), []time.Duration{0, 100 * ms, 100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(Linear, 100*ms, 250*ms, 5), []time.Duration{0, 100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(Exponential, 50*ms, 160*ms, 5), []time.Duration{0, 50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for attempt, want := range tc.want {
				require.Equal(t, want, tc.policy.Delay(attempt), "attempt %d", attempt)
			}
			require.Zero(t, tc.policy.Delay(-1))
		})
	}
	require.Equal(t, time.Hour, NewPolicy(Exponential, time.Second, time.Hour, 1).Delay(80))
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())
	require.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo(t *testing.T) {
	p := NewPolicy(Fixed, time.Millisecond, time.Millisecond, 2)

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("down")
	})
	require.EqualError(t, err, "down")
	require.Equal(t, 3, calls)

	calls = 0
	err = p.Do(context.Background(), func(context.Context) error {
		calls++
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDo_StopsWhenContextDone(t *testing.T) {
	p := NewPolicy(Fixed, time.Hour, time.Hour, 3)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
