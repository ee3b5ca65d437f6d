package grant

import (
	"context"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/jrsteele09/go-token-server/clients"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/tenants"
)

var _ oauth2.ClientStore = (*ClientStore)(nil)

// ClientStore resolves clients within the tenant carried by the context.
type ClientStore struct {
	repo clients.Repo
}

func NewClientStore(repo clients.Repo) *ClientStore {
	return &ClientStore{repo: repo}
}

// GetByID returns nil for an unknown client, which the manager reports as invalid_client.
func (s *ClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	c, err := s.lookup(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientStore) lookup(ctx context.Context, id string) (*clients.Client, error) {
	c, err := s.repo.Get(tenants.IDFromContext(ctx), id)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[ClientStore GetByID] client %s", id)
	}
	return c, nil
}
