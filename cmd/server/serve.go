package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/availability"
	"lease-reconciliation-service/internal/database"
	"lease-reconciliation-service/internal/handlers"
	"lease-reconciliation-service/internal/repositories"
	"lease-reconciliation-service/internal/services"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := database.NewConnection(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("error connecting to database: %w", err)
			}
			defer db.Close()

			contractRepo := repositories.NewContractRepository(db)
			propertyRepo := repositories.NewPropertyRepository(db)
			tenantRepo := repositories.NewTenantRepository(db)
			paymentRepo := repositories.NewPaymentRepository(db)
			expenseRepo := repositories.NewExpenseRepository(db)
			auditRepo := repositories.NewAuditRepository(db)

			policy := availability.Policy(cfg.LeasePolicy)
			router := handlers.SetupRouter(handlers.Services{
				Contracts:  services.NewContractService(db, contractRepo, propertyRepo, tenantRepo, auditRepo, policy, logger),
				Properties: services.NewPropertyService(propertyRepo, contractRepo),
				Payments:   services.NewPaymentService(db, paymentRepo, contractRepo, auditRepo, logger),
				Expenses:   services.NewExpenseService(db, expenseRepo, auditRepo, logger),
				Dashboard:  services.NewDashboardService(contractRepo, propertyRepo, paymentRepo),
			}, logger)

			srv := &http.Server{
				Addr:         cfg.ServerAddress,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server is running",
					zap.String("address", cfg.ServerAddress),
					zap.String("lease_policy", cfg.LeasePolicy),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("HTTP server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			logger.Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			logger.Info("server exited gracefully")
			return nil
		},
	}
}
