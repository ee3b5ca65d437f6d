package refresh

import "time"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// IsExpired reports whether a refresh token created at createdAt is past its
// TTL at now: createdAt + ttl < now. A zero TTL expires the token as soon as
// any time has passed.
func IsExpired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	return createdAt.Add(ttl).Before(now)
}

// Policy applies a refresh token TTL against a clock.
type Policy struct {
	TTL time.Duration
	Now func() time.Time
}

// NewPolicy returns a policy for ttl using NowTimeFunc as its clock.
func NewPolicy(ttl time.Duration) Policy {
	return Policy{TTL: ttl}
}

// WithTTL returns a copy of the policy with a different TTL.
func (p Policy) WithTTL(ttl time.Duration) Policy {
	p.TTL = ttl
	return p
}

// IsExpired reports whether a token created at createdAt is expired now.
func (p Policy) IsExpired(createdAt time.Time) bool {
	return IsExpired(createdAt, p.TTL, p.now())
}

// ExpiresAt returns the instant after which a token created at createdAt is expired.
func (p Policy) ExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(p.TTL)
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return NowTimeFunc()
}
