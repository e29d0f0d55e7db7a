package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lease-reconciliation-service/internal/models"
)

func TestExpenseService_RecordComputesAmount(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeExpenses{}
	audit := &fakeAudit{}
	svc := NewExpenseService(db, repo, audit, testLogger)

	vendor := int64(3)
	e, err := svc.Record(context.Background(), 5, ExpenseInput{
		Description: "Cement bags",
		Quantity:    amount("2.5"),
		UnitPrice:   amount("10.333"),
		ExpenseDate: "2024-06-10",
		VendorID:    &vendor,
	}, Actor{UserID: "site-lead"})
	require.NoError(t, err)
	assert.Equal(t, "25.83", e.Amount.StringFixed(2))
	assert.Equal(t, int64(5), e.ProjectID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.EntityExpense, audit.entries[0].EntityType)
	assert.JSONEq(t, `{"project_id":5,"amount":"25.83"}`, string(audit.entries[0].Details))
	assert.NoError(t, mock.ExpectationsWereMet())

	listed, err := svc.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestExpenseService_RecordValidation(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewExpenseService(db, &fakeExpenses{}, &fakeAudit{}, testLogger)

	tests := []struct {
		name      string
		projectID int64
		in        ExpenseInput
		field     string
	}{
		{"no project", 0, ExpenseInput{Description: "x", Quantity: amount("1"), ExpenseDate: "2024-06-10"}, "project_id"},
		{"blank description", 5, ExpenseInput{Description: " ", Quantity: amount("1"), ExpenseDate: "2024-06-10"}, "description"},
		{"zero quantity", 5, ExpenseInput{Description: "x", Quantity: amount("0"), ExpenseDate: "2024-06-10"}, "quantity"},
		{"negative price", 5, ExpenseInput{Description: "x", Quantity: amount("1"), UnitPrice: amount("-1"), ExpenseDate: "2024-06-10"}, "unit_price"},
		{"bad date", 5, ExpenseInput{Description: "x", Quantity: amount("1"), ExpenseDate: ""}, "expense_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.projectID, tt.in, Actor{})
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestExpenseService_ListEmptyProject(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewExpenseService(db, &fakeExpenses{}, &fakeAudit{}, testLogger)

	got, err := svc.List(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
