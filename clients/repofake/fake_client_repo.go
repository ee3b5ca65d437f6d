package clientrepofake

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-token-server/clients"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
)

var _ clients.Repo = (*FakeClientRepo)(nil)

type FakeClientRepo struct {
	clients map[string]map[string]*clients.Client // tenantID -> clientID -> client
	lock    sync.RWMutex
}

func NewFakeClientRepo() clients.Repo {
	return &FakeClientRepo{
		clients: make(map[string]map[string]*clients.Client),
	}
}

func (r *FakeClientRepo) Upsert(tenantID string, clientData *clients.Client) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if clientData.ID == "" {
		clientData.ID = uuid.New().String()
	}
	clientData.TenantID = tenantID
	if r.clients[tenantID] == nil {
		r.clients[tenantID] = make(map[string]*clients.Client)
	}
	r.clients[tenantID][clientData.ID] = clientData
	return nil
}

func (r *FakeClientRepo) Delete(tenantID, clientID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.clients[tenantID], clientID)
	return nil
}

func (r *FakeClientRepo) Get(tenantID, clientID string) (*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	client, ok := r.clients[tenantID][clientID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return client, nil
}

func (r *FakeClientRepo) List(tenantID string, offset, limit int) ([]*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*clients.Client, 0, len(r.clients[tenantID]))
	for _, v := range r.clients[tenantID] {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	if offset >= len(list) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
