package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lease-reconciliation-service/internal/availability"
	"lease-reconciliation-service/internal/models"
)

type contractFixture struct {
	svc        *ContractService
	contracts  *fakeContracts
	properties *fakeProperties
	audit      *fakeAudit
}

func newContractFixture(t *testing.T, policy availability.Policy, contracts ...*models.Contract) (*contractFixture, func(commit bool)) {
	t.Helper()
	db, mock := newTxDB(t)

	f := &contractFixture{
		contracts: newFakeContracts(contracts...),
		properties: &fakeProperties{byID: []*models.Property{
			{ID: 1, Name: "Unit A", Status: models.PropertyOccupied},
			{ID: 2, Name: "Unit B", Status: models.PropertyAvailable},
			{ID: 3, Name: "Unit C", Status: models.PropertyAvailable},
		}},
		audit: &fakeAudit{},
	}
	tenants := &fakeTenants{tenants: map[int64]*models.Tenant{
		7: {ID: 7, Name: "Ana", PropertyIDs: []int64{1, 2}},
		8: {ID: 8, Name: "Budi"},
	}}
	f.svc = NewContractService(db, f.contracts, f.properties, tenants, f.audit, policy, testLogger)
	f.svc.SetClock(fixedClock("2024-06-15"))

	expectTx := func(commit bool) {
		mock.ExpectBegin()
		if commit {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
		t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	}
	return f, expectTx
}

func leaseOnUnitA() *models.Contract {
	return &models.Contract{
		ID:             10,
		ContractNumber: "C-010",
		TenantID:       7,
		PropertyID:     1,
		RentAmount:     decimal.NewFromInt(1000),
		StartDate:      "2024-01-01",
		EndDate:        "2024-12-31",
		Status:         models.ContractActive,
	}
}

func (f *contractFixture) propertyStatus(id int64) string {
	p, _ := f.properties.GetPropertyByID(context.Background(), id)
	return p.Status
}

func TestContractService_CreateDerivesEndDate(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	expectTx(true)

	got, err := f.svc.Create(context.Background(), ContractInput{
		ContractNumber: " C-011 ",
		TenantID:       7,
		PropertyID:     2,
		RentAmount:     decimal.NewFromInt(1200),
		StartDate:      "2024-07-01",
		Months:         6,
	}, Actor{UserID: "u-1", CorrelationID: "req-1"})
	require.NoError(t, err)

	assert.Equal(t, "C-011", got.ContractNumber)
	assert.Equal(t, "2024-12-31", got.EndDate)
	assert.Equal(t, 6, got.Months)
	assert.Equal(t, models.ContractActive, got.Status)
	assert.Equal(t, models.ContractActive, got.EffectiveStatus)
	assert.Equal(t, models.PropertyOccupied, f.propertyStatus(2))

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, models.EntityContract, entry.EntityType)
	assert.Equal(t, models.AuditActionCreated, entry.Action)
	assert.Equal(t, "u-1", entry.UserID)
	assert.Equal(t, "req-1", entry.CorrelationID)
	assert.JSONEq(t, `{"property_id":2,"status":"active","start_date":"2024-07-01","end_date":"2024-12-31","rent_amount":"1200"}`, string(entry.Details))
}

func TestContractService_CreateRejectsLeasedProperty(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	expectTx(false)

	_, err := f.svc.Create(context.Background(), ContractInput{
		ContractNumber: "C-012",
		TenantID:       8,
		PropertyID:     1,
		RentAmount:     decimal.NewFromInt(900),
		StartDate:      "2025-01-01",
		Months:         12,
	}, Actor{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPropertyLeased))
	assert.Contains(t, err.Error(), "C-010")
	assert.Empty(t, f.audit.entries)
}

func TestContractService_OverlapPolicyAllowsFollowOnLease(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyOverlap, leaseOnUnitA())
	expectTx(true)

	got, err := f.svc.Create(context.Background(), ContractInput{
		ContractNumber: "C-012",
		TenantID:       8,
		PropertyID:     1,
		RentAmount:     decimal.NewFromInt(900),
		StartDate:      "2025-01-01",
		Months:         12,
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", got.EndDate)
}

func TestContractService_NonActiveContractNeverConflicts(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	expectTx(true)

	got, err := f.svc.Create(context.Background(), ContractInput{
		ContractNumber: "C-013",
		TenantID:       8,
		PropertyID:     1,
		StartDate:      "2024-02-01",
		Months:         3,
		Status:         models.ContractTerminated,
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, models.ContractTerminated, got.Status)
	assert.Equal(t, models.PropertyOccupied, f.propertyStatus(1))
}

func TestContractService_CreateValidation(t *testing.T) {
	valid := ContractInput{
		ContractNumber: "C-020",
		TenantID:       8,
		PropertyID:     3,
		RentAmount:     decimal.NewFromInt(500),
		StartDate:      "2024-07-01",
		Months:         6,
	}

	tests := []struct {
		name   string
		mutate func(*ContractInput)
		field  string
	}{
		{"missing number", func(in *ContractInput) { in.ContractNumber = "  " }, "contract_number"},
		{"missing tenant", func(in *ContractInput) { in.TenantID = 0 }, "tenant_id"},
		{"unknown tenant", func(in *ContractInput) { in.TenantID = 99 }, "tenant_id"},
		{"unknown property", func(in *ContractInput) { in.PropertyID = 99 }, "property_id"},
		{"negative rent", func(in *ContractInput) { in.RentAmount = decimal.NewFromInt(-1) }, "rent_amount"},
		{"bad start date", func(in *ContractInput) { in.StartDate = "2024-02-30" }, "start_date"},
		{"zero months", func(in *ContractInput) { in.Months = 0 }, "months"},
		{"unknown status", func(in *ContractInput) { in.Status = "draft" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newContractFixture(t, availability.PolicyEndDate)
			in := valid
			tt.mutate(&in)

			_, err := f.svc.Create(context.Background(), in, Actor{})
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestContractService_UpdateKeepsOwnProperty(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	expectTx(true)

	got, err := f.svc.Update(context.Background(), 10, ContractInput{
		ContractNumber: "C-010",
		TenantID:       7,
		PropertyID:     1,
		RentAmount:     decimal.NewFromInt(1100),
		StartDate:      "2024-01-01",
		Months:         18,
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30", got.EndDate)
	assert.Equal(t, 18, got.Months)
	assert.True(t, decimal.NewFromInt(1100).Equal(got.RentAmount))

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditActionUpdated, f.audit.entries[0].Action)
}

func TestContractService_UpdateMovingPropertyReleasesPrevious(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	expectTx(true)

	_, err := f.svc.Update(context.Background(), 10, ContractInput{
		ContractNumber: "C-010",
		TenantID:       7,
		PropertyID:     3,
		RentAmount:     decimal.NewFromInt(1000),
		StartDate:      "2024-01-01",
		Months:         12,
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, models.PropertyAvailable, f.propertyStatus(1))
	assert.Equal(t, models.PropertyOccupied, f.propertyStatus(3))
}

func TestContractService_UpdateAppliesToLockedRow(t *testing.T) {
	f, expectTx := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	expectTx(true)
	// Another edit moves the contract to Unit B after it was first read.
	f.contracts.beforeLock = func() {
		f.contracts.byID[10].PropertyID = 2
		f.properties.byID[0].Status = models.PropertyAvailable
		f.properties.byID[1].Status = models.PropertyOccupied
	}

	_, err := f.svc.Update(context.Background(), 10, ContractInput{
		ContractNumber: "C-010",
		TenantID:       7,
		PropertyID:     3,
		RentAmount:     decimal.NewFromInt(1000),
		StartDate:      "2024-01-01",
		Months:         12,
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, f.contracts.locked)
	assert.Equal(t, models.PropertyAvailable, f.propertyStatus(2))
	assert.Equal(t, models.PropertyOccupied, f.propertyStatus(3))
}

func TestContractService_UpdateUnknownContract(t *testing.T) {
	f, _ := newContractFixture(t, availability.PolicyEndDate)

	_, err := f.svc.Update(context.Background(), 404, ContractInput{
		ContractNumber: "C-404",
		TenantID:       7,
		PropertyID:     1,
		StartDate:      "2024-01-01",
		Months:         1,
	}, Actor{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContractService_GetReportsEffectiveStatus(t *testing.T) {
	lapsed := leaseOnUnitA()
	lapsed.EndDate = "2024-05-31"
	f, _ := newContractFixture(t, availability.PolicyEndDate, lapsed)

	got, err := f.svc.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.ContractActive, got.Status)
	assert.Equal(t, models.ContractExpired, got.EffectiveStatus)
	assert.Equal(t, 5, got.Months)
}

func TestContractService_SelectableProperties(t *testing.T) {
	f, _ := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA())
	ctx := context.Background()

	ids := func(ps []*models.Property) []int64 {
		out := make([]int64, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	got, err := f.svc.SelectableProperties(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(got))

	got, err = f.svc.SelectableProperties(ctx, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(got))

	got, err = f.svc.SelectableProperties(ctx, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))

	_, err = f.svc.SelectableProperties(ctx, 404, 0)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestContractService_LeasedAndDoubleLeased(t *testing.T) {
	second := leaseOnUnitA()
	second.ID = 11
	second.ContractNumber = "C-011"
	second.TenantID = 8
	second.EndDate = "2025-03-31"

	third := leaseOnUnitA()
	third.ID = 12
	third.PropertyID = 3
	third.EndDate = "2024-06-15"

	f, _ := newContractFixture(t, availability.PolicyEndDate, leaseOnUnitA(), second, third)
	ctx := context.Background()

	leased, err := f.svc.LeasedPropertyIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, leased)

	conflicts, err := f.svc.DoubleLeased(ctx)
	require.NoError(t, err)
	assert.Equal(t, []availability.Conflict{{PropertyID: 1, ContractIDs: []int64{10, 11}}}, conflicts)
}

func TestContractService_LeasedPropertyIDsWrapsRepositoryError(t *testing.T) {
	f, _ := newContractFixture(t, availability.PolicyEndDate)
	f.contracts.err = errors.New("connection reset")

	_, err := f.svc.LeasedPropertyIDs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list contracts")
}
