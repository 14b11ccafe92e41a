package service

import (
	"context"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"go.uber.org/zap"
)

// GetCompanyProfile returns a copy of the company profile, or nil when none
// has been saved yet
func (s *Store) GetCompanyProfile(_ context.Context) *entity.CompanyProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Snapshot()
}

// SetCompanyProfile saves the singleton profile under its fixed id. Any
// caller-supplied id is replaced.
func (s *Store) SetCompanyProfile(ctx context.Context, profile entity.CompanyProfile) (*entity.CompanyProfile, error) {
	profile.ID = entity.DefaultCompanyProfileID
	if err := s.validateStruct(&profile); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, map[string]any{repository.KeyCompanyProfile: &profile}); err != nil {
		return nil, err
	}
	s.profile = profile.Snapshot()
	s.log.Info("company profile saved", zap.String("company_name", profile.CompanyName))
	return profile.Snapshot(), nil
}

// UpdateCompanyProfile replaces the profile. Existing invoice snapshots are
// not touched.
func (s *Store) UpdateCompanyProfile(ctx context.Context, profile entity.CompanyProfile) (*entity.CompanyProfile, error) {
	return s.SetCompanyProfile(ctx, profile)
}
