package app

import (
	"net/http"

	"checkout/internal/shared/config"
	"checkout/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", deps.HealthHandler.HandleHealth)

	// Payment routes
	mux.HandleFunc("POST /api/pix/create", deps.PixHandler.HandleCreate)
	mux.HandleFunc("GET /api/pix/status/{id}", deps.PixHandler.HandleStatus)
	mux.HandleFunc("POST /api/pix/status/{id}", deps.PixHandler.HandleStatus)
	mux.HandleFunc("GET /api/proxy-image", deps.ProxyHandler.HandleQRImage)

	// Safeweb identity routes
	mux.HandleFunc("POST /api/safeweb/verificar-biometria", deps.SafewebHandler.HandleBiometry)
	mux.HandleFunc("POST /api/safeweb/consultar-cpf", deps.SafewebHandler.HandleLookup)
	mux.HandleFunc("POST /api/safeweb/gerar-protocolo", deps.SafewebHandler.HandleGenerateProtocol)
	mux.HandleFunc("POST /api/safeweb/liberar-pagamento", deps.SafewebHandler.HandleReleasePayment)
	mux.HandleFunc("POST /api/hope/create-solicitation", deps.SafewebHandler.HandleUploadSolicitation)

	// Gateway webhook (exempt from CORS and the per-IP limit)
	mux.HandleFunc("POST /webhook/safe2pay", deps.WebhookHandler.HandlePaymentNotification)

	// Apply global middleware
	handler := middleware.Logging(
		middleware.SecurityHeaders(
			middleware.RateLimit(deps.IPLimiter)(
				middleware.CORS(cfg.Server.AllowedHosts)(mux))))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	return handler
}
