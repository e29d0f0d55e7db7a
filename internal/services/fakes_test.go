package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/repositories"
)

// In-memory repositories; tx arguments are ignored and sqlmock only sees
// BEGIN/COMMIT/ROLLBACK.

type fakeContracts struct {
	byID   map[int64]*models.Contract
	nextID int64
	err    error
	locked []int64
	// beforeLock runs at the start of LockContractByID to simulate a
	// competing writer that committed first.
	beforeLock func()
}

func newFakeContracts(cs ...*models.Contract) *fakeContracts {
	f := &fakeContracts{byID: map[int64]*models.Contract{}, nextID: 100}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeContracts) InsertContract(_ context.Context, _ *sql.Tx, c *models.Contract) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeContracts) UpdateContract(_ context.Context, _ *sql.Tx, c *models.Contract) error {
	if _, ok := f.byID[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeContracts) GetContractByID(_ context.Context, id int64) (*models.Contract, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContracts) ListContracts(ctx context.Context, _ repositories.ContractFilter, _ repositories.Pagination) ([]*models.Contract, int, error) {
	all, err := f.ListAllContracts(ctx)
	return all, len(all), err
}

func (f *fakeContracts) ListAllContracts(context.Context) ([]*models.Contract, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Contract, 0, len(f.byID))
	for _, c := range f.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeContracts) LockContractsByProperty(ctx context.Context, _ *sql.Tx, propertyID int64) ([]*models.Contract, error) {
	all, err := f.ListAllContracts(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Contract
	for _, c := range all {
		if c.PropertyID == propertyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContracts) LockContractByID(ctx context.Context, _ *sql.Tx, id int64) (*models.Contract, error) {
	if f.beforeLock != nil {
		f.beforeLock()
	}
	f.locked = append(f.locked, id)
	return f.GetContractByID(ctx, id)
}

type fakeProperties struct {
	byID []*models.Property
}

func (f *fakeProperties) GetPropertyByID(_ context.Context, id int64) (*models.Property, error) {
	for _, p := range f.byID {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProperties) ListProperties(_ context.Context, _ repositories.Pagination) ([]*models.Property, int, error) {
	return f.byID, len(f.byID), nil
}

func (f *fakeProperties) ListAllProperties(context.Context) ([]*models.Property, error) {
	return f.byID, nil
}

func (f *fakeProperties) UpdatePropertyStatus(_ context.Context, _ *sql.Tx, id int64, status string) error {
	for _, p := range f.byID {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeTenants struct {
	tenants map[int64]*models.Tenant
}

func (f *fakeTenants) GetTenantByID(_ context.Context, id int64) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return t, nil
}

func (f *fakeTenants) GetTenantPropertyIDs(_ context.Context, id int64) ([]int64, error) {
	if t, ok := f.tenants[id]; ok {
		return t.PropertyIDs, nil
	}
	return nil, nil
}

type fakePayments struct {
	byID   map[int64]*models.RentPayment
	nextID int64
	// beforeUpdate runs at the start of UpdatePaymentStatus to simulate a
	// competing writer.
	beforeUpdate func()
}

func newFakePayments(ps ...*models.RentPayment) *fakePayments {
	f := &fakePayments{byID: map[int64]*models.RentPayment{}}
	for _, p := range ps {
		f.byID[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakePayments) InsertPayment(_ context.Context, _ *sql.Tx, p *models.RentPayment) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayments) GetPaymentByID(_ context.Context, id int64) (*models.RentPayment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) UpdatePaymentStatus(_ context.Context, _ *sql.Tx, id int64, from, to string) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	p, ok := f.byID[id]
	if !ok || p.Status != from {
		return repositories.ErrStatusChanged
	}
	p.Status = to
	return nil
}

func (f *fakePayments) ListPayments(ctx context.Context, _ repositories.PaymentFilter, _ repositories.Pagination) ([]*models.RentPayment, int, error) {
	all, _ := f.ListAllPayments(ctx)
	return all, len(all), nil
}

func (f *fakePayments) ListAllPayments(context.Context) ([]*models.RentPayment, error) {
	out := make([]*models.RentPayment, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePayments) ListPaymentsByContract(ctx context.Context, contractID int64) ([]*models.RentPayment, error) {
	all, _ := f.ListAllPayments(ctx)
	var out []*models.RentPayment
	for _, p := range all {
		if p.ContractID == contractID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeExpenses struct {
	items []*models.ProjectExpense
}

func (f *fakeExpenses) InsertExpense(_ context.Context, _ *sql.Tx, e *models.ProjectExpense) error {
	e.ID = int64(len(f.items) + 1)
	f.items = append(f.items, e)
	return nil
}

func (f *fakeExpenses) ListExpensesByProject(_ context.Context, projectID int64) ([]*models.ProjectExpense, error) {
	var out []*models.ProjectExpense
	for _, e := range f.items {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAudit struct {
	entries []*models.AuditEntry
}

func (f *fakeAudit) CreateAuditEntry(_ context.Context, _ *sql.Tx, a *models.AuditEntry) error {
	a.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, a)
	return nil
}

func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

var testLogger = zap.NewNop()
