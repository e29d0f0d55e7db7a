package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/availability"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/reconciliation"
	"lease-reconciliation-service/internal/repositories"
	"lease-reconciliation-service/internal/services"
)

type ContractService interface {
	Create(ctx context.Context, in services.ContractInput, actor services.Actor) (*services.ContractDetail, error)
	Update(ctx context.Context, id int64, in services.ContractInput, actor services.Actor) (*services.ContractDetail, error)
	Get(ctx context.Context, id int64) (*services.ContractDetail, error)
	List(ctx context.Context, filter repositories.ContractFilter, p repositories.Pagination) ([]*services.ContractDetail, repositories.Page, error)
	SelectableProperties(ctx context.Context, contractID, tenantID int64) ([]*models.Property, error)
	LeasedPropertyIDs(ctx context.Context) ([]int64, error)
	DoubleLeased(ctx context.Context) ([]availability.Conflict, error)
}

type PropertyService interface {
	List(ctx context.Context, p repositories.Pagination) ([]*services.PropertyView, repositories.Page, error)
}

type PaymentService interface {
	Preview(ctx context.Context, contractID int64, amount decimal.Decimal) (*services.PaymentPreview, error)
	Record(ctx context.Context, in services.PaymentInput, actor services.Actor) (*models.RentPayment, error)
	Transition(ctx context.Context, id int64, target string, actor services.Actor) (*models.RentPayment, error)
	List(ctx context.Context, filter repositories.PaymentFilter, p repositories.Pagination) ([]*models.RentPayment, repositories.Page, error)
	Summary(ctx context.Context) (reconciliation.Summary, error)
	ReconcilePeriod(ctx context.Context, contractID int64, period string) (*reconciliation.PeriodReconciliation, error)
}

type ExpenseService interface {
	Record(ctx context.Context, projectID int64, in services.ExpenseInput, actor services.Actor) (*models.ProjectExpense, error)
	List(ctx context.Context, projectID int64) ([]*models.ProjectExpense, error)
}

type DashboardService interface {
	Get(ctx context.Context) (*services.Dashboard, error)
}

// Services groups the dependencies of the API routes.
type Services struct {
	Contracts  ContractService
	Properties PropertyService
	Payments   PaymentService
	Expenses   ExpenseService
	Dashboard  DashboardService
}

type handler struct {
	logger *zap.Logger
}

func SetupRouter(svc Services, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(logger))
	router.Use(recoveryMiddleware(logger))

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	base := handler{logger: logger}
	contracts := &ContractHandler{handler: base, service: svc.Contracts}
	properties := &PropertyHandler{handler: base, service: svc.Properties, contracts: svc.Contracts}
	payments := &PaymentHandler{handler: base, service: svc.Payments}
	expenses := &ExpenseHandler{handler: base, service: svc.Expenses}
	dashboard := &DashboardHandler{handler: base, service: svc.Dashboard}

	api.HandleFunc("/contracts", contracts.ListContracts).Methods(http.MethodGet)
	api.HandleFunc("/contracts", contracts.CreateContract).Methods(http.MethodPost)
	api.HandleFunc("/contracts/term", contracts.ComputeTerm).Methods(http.MethodGet)
	api.HandleFunc("/contracts/selectable-properties", contracts.SelectableProperties).Methods(http.MethodGet)
	api.HandleFunc("/contracts/{id:[0-9]+}", contracts.GetContract).Methods(http.MethodGet)
	api.HandleFunc("/contracts/{id:[0-9]+}", contracts.UpdateContract).Methods(http.MethodPut)
	api.HandleFunc("/contracts/{id:[0-9]+}/periods/{period}", payments.ReconcilePeriod).Methods(http.MethodGet)

	api.HandleFunc("/properties", properties.ListProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties/leased", properties.LeasedProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties/conflicts", properties.Conflicts).Methods(http.MethodGet)

	api.HandleFunc("/payments", payments.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments", payments.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/preview", payments.PreviewPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/summary", payments.Summary).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}/status", payments.TransitionPayment).Methods(http.MethodPost)

	api.HandleFunc("/projects/{id:[0-9]+}/expenses", expenses.ListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id:[0-9]+}/expenses", expenses.RecordExpense).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", dashboard.GetDashboard).Methods(http.MethodGet)

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "healthy",
	}
	respondWithJSON(w, http.StatusOK, response)
}
