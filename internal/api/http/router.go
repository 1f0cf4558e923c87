package http

import (
	"context"
	"net/http"

	"evrental-backend/internal/metrics"
	"evrental-backend/internal/security"
	"evrental-backend/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Auth       *AuthHandler
	Rental     *RentalHandler
	Payment    *PaymentHandler
	Inspection *InspectionHandler
	Settings   *SettingsHandler
	Health     HealthCheck
}

// NewRouter wires every named route. Route names key the security levels in
// config.EndpointSecurityConfig.
func NewRouter(h Handlers, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, tracing.Middleware, metrics.Middleware, NewAuthMiddleware(tokens).Handler)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
	r.HandleFunc("/health", healthHandler(h.Health)).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost).Name("auth.login")

	api.HandleFunc("/rentals", h.Rental.Create).Methods(http.MethodPost).Name("rentals.create")
	api.HandleFunc("/rentals", h.Rental.List).Methods(http.MethodGet).Name("rentals.list")
	api.HandleFunc("/rentals/{id:[0-9]+}", h.Rental.Get).Methods(http.MethodGet).Name("rentals.get")
	api.HandleFunc("/rentals/{id:[0-9]+}/start", h.Rental.Start).Methods(http.MethodPost).Name("rentals.start")
	api.HandleFunc("/rentals/{id:[0-9]+}/return", h.Rental.Return).Methods(http.MethodPost).Name("rentals.return")
	api.HandleFunc("/rentals/{id:[0-9]+}/cancel", h.Rental.Cancel).Methods(http.MethodPost).Name("rentals.cancel")
	api.HandleFunc("/rentals/{id:[0-9]+}/overdue", h.Rental.MarkOverdue).Methods(http.MethodPost).Name("rentals.overdue")
	api.HandleFunc("/rentals/{id:[0-9]+}/accessories", h.Rental.AssignAccessories).Methods(http.MethodPost).Name("rentals.accessories")

	api.HandleFunc("/rentals/{id:[0-9]+}/payments", h.Payment.List).Methods(http.MethodGet).Name("rentals.payments.list")
	api.HandleFunc("/rentals/{id:[0-9]+}/payments", h.Payment.Record).Methods(http.MethodPost).Name("rentals.payments.add")
	api.HandleFunc("/payments/{id:[0-9]+}/status", h.Payment.UpdateStatus).Methods(http.MethodPatch).Name("payments.status")

	api.HandleFunc("/rentals/{id:[0-9]+}/inspection", h.Inspection.Get).Methods(http.MethodGet).Name("inspections.get")
	api.HandleFunc("/rentals/{id:[0-9]+}/inspection", h.Inspection.Save).Methods(http.MethodPut).Name("inspections.save")
	api.HandleFunc("/inspections/{id:[0-9]+}/settle", h.Inspection.Settle).Methods(http.MethodPost).Name("inspections.settle")

	api.HandleFunc("/settings/settlement", h.Settings.GetSettlement).Methods(http.MethodGet).Name("settings.settlement.get")
	api.HandleFunc("/settings/settlement", h.Settings.UpdateSettlement).Methods(http.MethodPut).Name("settings.settlement.update")

	return r
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
