package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"minangpos-backend/internal/domain"
)

func (s *Store) CreateUser(_ context.Context, u domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, fmt.Errorf("%w: email %s already registered", domain.ErrConflict, u.Email)
		}
	}
	now := time.Now().UTC()
	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	out := u
	return &out, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) ListProducts(context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Active {
			items = append(items, p)
		}
	}
	return items, nil
}

func (s *Store) GetSettings(context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.settings
	return &out, nil
}

func (s *Store) SaveSettings(_ context.Context, in domain.Settings) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.UpdatedAt = time.Now().UTC()
	s.settings = in
	out := in
	return &out, nil
}
