package service

import (
	"context"
	"strings"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/pkg/apperror"
	"github.com/sangkips/invoicely/pkg/pagination"
	"github.com/sangkips/invoicely/pkg/utils"
	"go.uber.org/zap"
)

func clientID(c *entity.Client) string { return c.ID }

// AddClient stores a new client under a freshly generated id
func (s *Store) AddClient(ctx context.Context, client entity.Client) (*entity.Client, error) {
	client.ID = utils.NewID()
	if err := s.validateStruct(&client); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := appended(s.clients, client)
	if err := s.persist(ctx, map[string]any{repository.KeyClients: next}); err != nil {
		return nil, err
	}
	s.clients = next
	s.log.Info("client added", zap.String("client_id", client.ID))
	return client.Snapshot(), nil
}

// UpdateClient replaces the client with the same id. It is a no-op returning
// nil when the id is unknown. Invoice snapshots keep the old details.
func (s *Store) UpdateClient(ctx context.Context, client entity.Client) (*entity.Client, error) {
	if client.ID == "" {
		return nil, apperror.NewFieldValidationError("id", "is required")
	}
	if err := s.validateStruct(&client); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.clients, client.ID, clientID)
	if i < 0 {
		return nil, nil
	}
	next := replaced(s.clients, i, client)
	if err := s.persist(ctx, map[string]any{repository.KeyClients: next}); err != nil {
		return nil, err
	}
	s.clients = next
	return client.Snapshot(), nil
}

// DeleteClient removes the client. Invoices that reference it are kept.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexByID(s.clients, id, clientID)
	if i < 0 {
		return nil
	}
	next := without(s.clients, i)
	if err := s.persist(ctx, map[string]any{repository.KeyClients: next}); err != nil {
		return err
	}
	s.clients = next
	s.log.Info("client deleted", zap.String("client_id", id))
	return nil
}

// GetClientByID returns a copy of the client, or nil when absent
func (s *Store) GetClientByID(_ context.Context, id string) *entity.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.clients, id, clientID); i >= 0 {
		return s.clients[i].Snapshot()
	}
	return nil
}

// ListClients returns clients in insertion order, optionally filtered by a
// case-insensitive match on name or email
func (s *Store) ListClients(_ context.Context, params *pagination.PaginationParams, search string) *pagination.PaginatedResult[entity.Client] {
	s.mu.Lock()
	matched := make([]entity.Client, 0, len(s.clients))
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, c := range s.clients {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) {
			matched = append(matched, c)
		}
	}
	s.mu.Unlock()

	page, meta := pagination.Paginate(matched, params)
	return pagination.NewPaginatedResult(page, meta)
}
