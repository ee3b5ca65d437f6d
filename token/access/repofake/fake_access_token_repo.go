package accessrepofake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/token/access"
)

var _ access.Repo = (*FakeAccessTokenRepo)(nil)

type FakeAccessTokenRepo struct {
	tokens map[string]access.Token
	lock   sync.RWMutex
}

func NewFakeAccessTokenRepo() *FakeAccessTokenRepo {
	return &FakeAccessTokenRepo{
		tokens: make(map[string]access.Token),
	}
}

func (r *FakeAccessTokenRepo) Upsert(_ context.Context, t *access.Token) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tokens[t.Token] = *t
	return nil
}

func (r *FakeAccessTokenRepo) Delete(_ context.Context, hash string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.tokens, hash)
	return nil
}

func (r *FakeAccessTokenRepo) GetByHash(_ context.Context, hash string) (*access.Token, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.tokens[hash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

// Len returns the number of stored records.
func (r *FakeAccessTokenRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.tokens)
}
