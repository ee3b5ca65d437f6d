package refresh_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-token-server/token/refresh"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		ttl       time.Duration
		want      bool
	}{
		{"created 4000s ago with 3600s ttl", testNow.Add(-4000 * time.Second), time.Hour, true},
		{"created 10s ago with 3600s ttl", testNow.Add(-10 * time.Second), time.Hour, false},
		{"exactly at boundary", testNow.Add(-time.Hour), time.Hour, false},
		{"one nanosecond past boundary", testNow.Add(-time.Hour - time.Nanosecond), time.Hour, true},
		{"zero ttl expires anything in the past", testNow.Add(-time.Millisecond), 0, true},
		{"zero ttl created now", testNow, 0, false},
		{"created in the future", testNow.Add(time.Minute), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, refresh.IsExpired(tt.createdAt, tt.ttl, testNow))
		})
	}
}

func TestPolicyClock(t *testing.T) {
	p := refresh.Policy{TTL: time.Hour, Now: func() time.Time { return testNow }}
	require.True(t, p.IsExpired(testNow.Add(-4000*time.Second)))
	require.False(t, p.IsExpired(testNow.Add(-10*time.Second)))
	require.Equal(t, testNow.Add(time.Hour), p.ExpiresAt(testNow))

	longer := p.WithTTL(2 * time.Hour)
	require.False(t, longer.IsExpired(testNow.Add(-4000*time.Second)))
	require.Equal(t, time.Hour, p.TTL)
}

func TestPolicyDefaultClock(t *testing.T) {
	orig := refresh.NowTimeFunc
	t.Cleanup(func() { refresh.NowTimeFunc = orig })
	refresh.NowTimeFunc = func() time.Time { return testNow }

	p := refresh.NewPolicy(0)
	require.True(t, p.IsExpired(testNow.Add(-time.Second)))
	require.False(t, p.IsExpired(testNow))
}
