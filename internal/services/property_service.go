package services

import (
	"context"
	"fmt"
	"time"

	"lease-reconciliation-service/internal/availability"
	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/repositories"
)

type PropertyService struct {
	propertyRepo repositories.PropertyRepository
	contractRepo repositories.ContractRepository
	now          func() time.Time
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, contractRepo repositories.ContractRepository) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		contractRepo: contractRepo,
		now:          time.Now,
	}
}

func (s *PropertyService) SetClock(now func() time.Time) {
	s.now = now
}

// PropertyView pairs the stored property with its derived occupancy.
type PropertyView struct {
	*models.Property
	Leased bool `json:"leased"`
}

func (s *PropertyService) List(ctx context.Context, p repositories.Pagination) ([]*PropertyView, repositories.Page, error) {
	p = p.Normalize()
	properties, total, err := s.propertyRepo.ListProperties(ctx, p)
	if err != nil {
		return nil, repositories.Page{}, fmt.Errorf("failed to list properties: %w", err)
	}
	contracts, err := s.contractRepo.ListAllContracts(ctx)
	if err != nil {
		return nil, repositories.Page{}, fmt.Errorf("failed to list contracts: %w", err)
	}

	leased := availability.LeasedPropertyIDs(contracts, leaseterm.Today(s.now()), 0)
	views := make([]*PropertyView, 0, len(properties))
	for _, prop := range properties {
		_, ok := leased[prop.ID]
		views = append(views, &PropertyView{Property: prop, Leased: ok})
	}
	return views, repositories.NewPage(p, total), nil
}
