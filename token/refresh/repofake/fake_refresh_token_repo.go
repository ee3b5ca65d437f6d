package refreshrepofake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]refresh.Token
	lock   sync.RWMutex
	gets   int
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]refresh.Token),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(_ context.Context, t *refresh.Token) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.tokens[t.Token] = *t
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, hash string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	delete(tr.tokens, hash)
	return nil
}

func (tr *FakeRefreshTokenRepo) GetByHash(_ context.Context, hash string) (*refresh.Token, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.gets++
	t, ok := tr.tokens[hash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

// Lookups returns how many times GetByHash was called.
func (tr *FakeRefreshTokenRepo) Lookups() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return tr.gets
}

// Len returns the number of stored records.
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}
