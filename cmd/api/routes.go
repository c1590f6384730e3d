package main

import (
	"log"
	"net/http"

	httphandlers "plata/internal/interfaces/http"
	"plata/internal/shared/config"
	"plata/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("GET /api/users/me", protected(deps.UserHandler.HandleMe))

	mux.Handle("GET /api/transactions", protected(deps.TransactionHandler.HandleList))
	mux.Handle("POST /api/transactions", protected(deps.TransactionHandler.HandleCreate))
	mux.Handle("GET /api/transactions/{id}", protected(deps.TransactionHandler.HandleGet))
	mux.Handle("PUT /api/transactions/{id}", protected(deps.TransactionHandler.HandleUpdate))
	mux.Handle("DELETE /api/transactions/{id}", protected(deps.TransactionHandler.HandleDelete))

	mux.Handle("GET /api/stats/dashboard", protected(deps.StatsHandler.HandleDashboard))

	// Mercado Pago connect flow. The callback is hit by the provider redirect,
	// but the user's auth cookie rides along, so it stays behind auth.
	mux.Handle("GET /api/connect/start", protected(deps.ConnectHandler.HandleStart))
	mux.Handle("GET /api/connect/callback", protected(deps.ConnectHandler.HandleCallback))
	mux.Handle("POST /api/connect/disconnect", protected(deps.ConnectHandler.HandleDisconnect))
	mux.Handle("GET /api/connect/status", protected(deps.ConnectHandler.HandleStatus))
	mux.Handle("GET /api/connect/profile", protected(deps.ConnectHandler.HandleProfile))
	mux.Handle("GET /api/connect/payments", protected(deps.ConnectHandler.HandlePayments))
	mux.Handle("GET /api/connect/movements", protected(deps.ConnectHandler.HandleMovements))
	mux.Handle("POST /api/connect/import", protected(deps.ConnectHandler.HandleImport))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	// Tracing and metrics when telemetry is enabled
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
