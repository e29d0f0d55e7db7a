package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"lease-reconciliation-service/internal/availability"
	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/reconciliation"
	"lease-reconciliation-service/internal/repositories"
)

type DashboardService struct {
	contractRepo repositories.ContractRepository
	propertyRepo repositories.PropertyRepository
	paymentRepo  repositories.PaymentRepository
	now          func() time.Time
}

func NewDashboardService(
	contractRepo repositories.ContractRepository,
	propertyRepo repositories.PropertyRepository,
	paymentRepo repositories.PaymentRepository,
) *DashboardService {
	return &DashboardService{
		contractRepo: contractRepo,
		propertyRepo: propertyRepo,
		paymentRepo:  paymentRepo,
		now:          time.Now,
	}
}

func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

type Dashboard struct {
	AsOf                string                  `json:"as_of"`
	TotalProperties     int                     `json:"total_properties"`
	LeasedProperties    int                     `json:"leased_properties"`
	AvailableProperties int                     `json:"available_properties"`
	ActiveContracts     int                     `json:"active_contracts"`
	ExpiredUnmarked     int                     `json:"expired_unmarked"`
	DoubleLeased        []availability.Conflict `json:"double_leased"`
	Payments            reconciliation.Summary  `json:"payments"`
}

// Get loads the contract, property and payment snapshots concurrently and
// derives the dashboard totals from them.
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	var (
		contracts  []*models.Contract
		properties []*models.Property
		payments   []*models.RentPayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contracts, err = s.contractRepo.ListAllContracts(gctx)
		if err != nil {
			return fmt.Errorf("failed to list contracts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		properties, err = s.propertyRepo.ListAllProperties(gctx)
		if err != nil {
			return fmt.Errorf("failed to list properties: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = s.paymentRepo.ListAllPayments(gctx)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := leaseterm.Today(s.now())
	leased := availability.LeasedPropertyIDs(contracts, today, 0)

	d := &Dashboard{
		AsOf:            today,
		TotalProperties: len(properties),
		DoubleLeased:    availability.DoubleLeased(contracts, today),
		Payments:        reconciliation.Summarize(payments),
	}
	for _, p := range properties {
		if _, ok := leased[p.ID]; ok {
			d.LeasedProperties++
		}
	}
	d.AvailableProperties = d.TotalProperties - d.LeasedProperties

	for _, c := range contracts {
		switch leaseterm.EffectiveStatus(c, today) {
		case models.ContractActive:
			d.ActiveContracts++
		case models.ContractExpired:
			if c.Status == models.ContractActive {
				d.ExpiredUnmarked++
			}
		}
	}
	if d.DoubleLeased == nil {
		d.DoubleLeased = []availability.Conflict{}
	}
	return d, nil
}
